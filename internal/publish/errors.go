package publish

import "fmt"

// ImageCreationError indicates the instance could not be converted into an
// available image.
type ImageCreationError struct {
	Name string
	Err  error
}

func (e *ImageCreationError) Error() string {
	return fmt.Sprintf("failed to create image %q: %v", e.Name, e.Err)
}

func (e *ImageCreationError) Unwrap() error {
	return e.Err
}

// ReplicationError indicates the image copy into one target region failed.
type ReplicationError struct {
	Region string
	Err    error
}

func (e *ReplicationError) Error() string {
	return fmt.Sprintf("failed to replicate image into %s: %v", e.Region, e.Err)
}

func (e *ReplicationError) Unwrap() error {
	return e.Err
}
