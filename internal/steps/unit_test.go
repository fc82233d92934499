package steps

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeUnitFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestUnit_ServiceIsInstalledAndStarted(t *testing.T) {
	file := writeUnitFile(t, "agent.service", `[Unit]
Description=Agent

[Service]
ExecStart=/usr/bin/agent

[Install]
WantedBy=multi-user.target
`)

	remote := &fakeRemote{}
	u := &Unit{File: file}
	require.NoError(t, u.Run(context.Background(), newTestEnv(remote)))

	require.Len(t, remote.uploads, 1)
	assert.Equal(t, []string{file}, remote.uploads[0].paths)
	assert.False(t, remote.uploads[0].recursive)

	flat := remote.flatCommands()
	assert.Contains(t, flat, "sudo mv /tmp/staging/agent.service /etc/systemd/system/agent.service")
	assert.Contains(t, flat, "sudo systemctl daemon-reload")
	assert.Contains(t, flat, "sudo systemctl enable agent.service")
	assert.Contains(t, flat, "sudo systemctl start agent.service")
	assert.Contains(t, flat, "sudo systemctl status agent.service --no-pager")
}

func TestUnit_OneshotServiceIsNotStarted(t *testing.T) {
	file := writeUnitFile(t, "seed.service", `[Service]
Type=oneshot
ExecStart=/usr/bin/seed
`)

	remote := &fakeRemote{}
	u := &Unit{File: file}
	require.NoError(t, u.Run(context.Background(), newTestEnv(remote)))

	flat := remote.flatCommands()
	assert.Contains(t, flat, "sudo systemctl daemon-reload")
	assert.NotContains(t, flat, "systemctl start")
	assert.NotContains(t, flat, "systemctl enable")
}

func TestUnit_TimerIsNotStarted(t *testing.T) {
	file := writeUnitFile(t, "sweep.timer", `[Timer]
OnCalendar=daily
`)

	remote := &fakeRemote{}
	u := &Unit{File: file}
	require.NoError(t, u.Run(context.Background(), newTestEnv(remote)))

	flat := remote.flatCommands()
	assert.Contains(t, flat, "sudo mv /tmp/staging/sweep.timer /etc/systemd/system/sweep.timer")
	assert.NotContains(t, flat, "systemctl start")
}

func TestUnit_MissingFile(t *testing.T) {
	remote := &fakeRemote{}
	u := &Unit{File: filepath.Join(t.TempDir(), "absent.service")}

	err := u.Run(context.Background(), newTestEnv(remote))
	require.Error(t, err)
	assert.Empty(t, remote.uploads, "nothing is uploaded when the unit file cannot be read")
}

func TestUnit_ShouldStart(t *testing.T) {
	cases := []struct {
		name    string
		file    string
		content string
		want    bool
	}{
		{"plain service", "a.service", "[Service]\nExecStart=/bin/true\n", true},
		{"oneshot service", "a.service", "[Service]\nType=oneshot\n", false},
		{"oneshot with surrounding space", "a.service", "[Service]\n  Type = oneshot  \n", false},
		{"timer", "a.timer", "[Timer]\nOnCalendar=daily\n", false},
		{"mount", "a.mount", "[Mount]\nWhere=/data\n", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u := &Unit{File: tc.file}
			assert.Equal(t, tc.want, u.shouldStart([]byte(tc.content)))
		})
	}
}
