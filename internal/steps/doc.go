// Package steps implements the provisioning pipeline: typed steps
// dispatched through a fixed registry and executed strictly in declared
// order against a remote channel.
//
// Five variants exist: shell (literal commands), unit (systemd unit
// install), wait (remote condition poll), copy (local tree into staging),
// and chef (configuration-management run). All step artifacts flow through
// a per-build staging directory that the executor creates before the first
// step and removes after the last, whether or not the run succeeded.
package steps
