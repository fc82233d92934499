package ssh

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/pkg/sftp"
)

// Upload copies local paths into a remote directory over the existing
// connection. Directories require recursive; their layout is preserved
// relative to the directory itself, so uploading /tmp/cookbooks lands at
// remoteDir/cookbooks/...
func (c *Client) Upload(ctx context.Context, localPaths []string, remoteDir string, recursive bool) error {
	client, err := sftp.NewClient(c.conn)
	if err != nil {
		return fmt.Errorf("failed to open sftp channel on %s: %w", c.addr, err)
	}
	defer func() { _ = client.Close() }()

	if err := client.MkdirAll(remoteDir); err != nil {
		return fmt.Errorf("failed to create remote directory %s: %w", remoteDir, err)
	}

	for _, local := range localPaths {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("upload cancelled: %w", err)
		}

		info, err := os.Stat(local)
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", local, err)
		}

		if info.IsDir() {
			if !recursive {
				return fmt.Errorf("%s is a directory and upload is not recursive", local)
			}
			if err := c.uploadTree(ctx, client, local, path.Join(remoteDir, info.Name())); err != nil {
				return err
			}
			continue
		}

		if err := uploadFile(client, local, path.Join(remoteDir, info.Name()), info.Mode()); err != nil {
			return err
		}
	}

	return nil
}

// uploadTree mirrors a local directory tree under remoteRoot.
func (c *Client) uploadTree(ctx context.Context, client *sftp.Client, localRoot, remoteRoot string) error {
	return filepath.WalkDir(localRoot, func(local string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("upload cancelled: %w", ctxErr)
		}

		rel, err := filepath.Rel(localRoot, local)
		if err != nil {
			return err
		}
		remote := path.Join(remoteRoot, filepath.ToSlash(rel))

		if d.IsDir() {
			if err := client.MkdirAll(remote); err != nil {
				return fmt.Errorf("failed to create remote directory %s: %w", remote, err)
			}
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		return uploadFile(client, local, remote, info.Mode())
	})
}

// uploadFile copies one file and carries its mode over.
func uploadFile(client *sftp.Client, local, remote string, mode os.FileMode) error {
	src, err := os.Open(local) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", local, err)
	}
	defer func() { _ = src.Close() }()

	dst, err := client.Create(remote)
	if err != nil {
		return fmt.Errorf("failed to create remote file %s: %w", remote, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return fmt.Errorf("failed to copy %s to %s: %w", local, remote, err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("failed to flush remote file %s: %w", remote, err)
	}

	if err := client.Chmod(remote, mode.Perm()); err != nil {
		return fmt.Errorf("failed to chmod remote file %s: %w", remote, err)
	}
	return nil
}
