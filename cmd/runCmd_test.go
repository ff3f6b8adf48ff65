package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/kaungyarzar/ssh-client-ruckus/internal/session"
)

const auditManifest = `
name: Audit
description: Access point audit
device:
  host: ap.lab
  port: 2222
  user: super
commands:
  - title: Radios
    command: get wlanlist
    mode: vendor
  - command: cat
    args: ["/writable/etc/system.conf"]
    mode: general
    timeout: 5s
  - cmd: get boarddata
    shell: rkscli
`

func readReport(t *testing.T, path string) yamlReport {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	var rep yamlReport
	require.NoError(t, yaml.Unmarshal(b, &rep), string(b))
	return rep
}

func TestRunCmd_WritesYAMLReport(t *testing.T) {
	resetConfig()
	d := newTestDevice()
	seen := stubDevice(t, d)
	tmp := t.TempDir()
	mf := writeTemp(t, tmp, "m.yaml", auditManifest)
	outPath := filepath.Join(tmp, "reports", "out.yaml")

	_, err := execute(t, "run", "--manifest", mf, "--out", outPath, "--password", "sp-admin")
	require.NoError(t, err)

	// Connection defaults come from the manifest's device section
	require.Equal(t, "ap.lab", seen.Host)
	require.Equal(t, 2222, seen.Port)
	require.Equal(t, "super", seen.Username)

	require.Equal(t, []string{
		"super", "sp-admin",
		"get version", "get boarddata",
		"get wlanlist",
		"!v54!", "cat /writable/etc/system.conf",
		"rkscli", "get boarddata",
	}, d.Lines())

	rep := readReport(t, outPath)
	require.Equal(t, "Audit", rep.Name)
	require.NotEmpty(t, rep.Session)
	require.Equal(t, "ap.lab", rep.Device.Host)
	require.Equal(t, "116.0.0.0.1", rep.Device.Version)
	require.Equal(t, "451234567890", rep.Device.Serial)
	require.Empty(t, rep.Device.Errors)
	require.Len(t, rep.Results, 3)

	require.Equal(t, "Radios", rep.Results[0].Title)
	require.Equal(t, "vendor", rep.Results[0].Mode)
	require.Equal(t, "get wlanlist\r\nOK\r\n", rep.Results[0].Output)
	require.Empty(t, rep.Results[0].Timeout)

	require.Equal(t, "general", rep.Results[1].Mode)
	require.Equal(t, "5s", rep.Results[1].Timeout)
	require.Equal(t, "cat /writable/etc/system.conf: ok\r\n", rep.Results[1].Output)

	require.Equal(t, "vendor", rep.Results[2].Mode)
	require.Contains(t, rep.Results[2].Output, "Serial#: 451234567890")
}

func TestRunCmd_FlagsBeatManifestDevice(t *testing.T) {
	resetConfig()
	seen := stubDevice(t, newTestDevice())
	tmp := t.TempDir()
	mf := writeTemp(t, tmp, "m.yaml", auditManifest)

	_, err := execute(t, "run", "--manifest", mf, "--out", filepath.Join(tmp, "out.yaml"),
		"--host", "ap.other", "--port", "22", "--password", "sp-admin")
	require.NoError(t, err)
	require.Equal(t, "ap.other", seen.Host)
	require.Equal(t, 22, seen.Port)
	require.Equal(t, "super", seen.Username)
}

func TestRunCmd_TextFormat(t *testing.T) {
	resetConfig()
	stubDevice(t, newTestDevice())
	tmp := t.TempDir()
	mf := writeTemp(t, tmp, "m.yaml", auditManifest)
	outPath := filepath.Join(tmp, "out.txt")

	_, err := execute(t, "run", "-m", mf, "-o", outPath, "--format", "text", "--password", "sp-admin")
	require.NoError(t, err)

	b, err := os.ReadFile(outPath)
	require.NoError(t, err)
	out := string(b)
	require.Contains(t, out, "Name: Audit\n")
	require.Contains(t, out, "Device: ap.lab\n")
	require.Contains(t, out, "Version: 116.0.0.0.1\n")
	require.Contains(t, out, "Serial: 451234567890\n")
	require.Contains(t, out, "Command Count: 3\n")
	require.Contains(t, out, "Title: Radios\nCommand: get wlanlist\nMode: vendor\n")
	require.Contains(t, out, "Timeout: 5s\n")
}

func TestRunCmd_StopsAtFirstFailureAndKeepsReport(t *testing.T) {
	resetConfig()
	d := newTestDevice()
	stubDevice(t, d)
	tmp := t.TempDir()
	mf := writeTemp(t, tmp, "m.yaml", `
name: N
description: D
commands:
  - command: get wlanlist
    mode: vendor
  - command: exit
    mode: vendor
  - command: get version
    mode: vendor
`)
	outPath := filepath.Join(tmp, "out.yaml")

	_, err := execute(t, "run", "-m", mf, "-o", outPath, "--host", "ap.lab", "--user", "super", "--password", "sp-admin")
	require.Error(t, err)
	require.ErrorIs(t, err, session.ErrClosed)
	require.Contains(t, err.Error(), "commands[1]")

	rep := readReport(t, outPath)
	require.Len(t, rep.Results, 2)
	require.Empty(t, rep.Results[0].Error)
	require.NotEmpty(t, rep.Results[1].Error)
	require.Equal(t, []string{"super", "sp-admin", "get version", "get boarddata", "get wlanlist", "exit"}, d.Lines())
}

func TestRunCmd_RecordsMissingIdentity(t *testing.T) {
	resetConfig()
	d := newTestDevice()
	d.Responses = map[string]string{"get boarddata": "error\r\n"}
	stubDevice(t, d)
	tmp := t.TempDir()
	mf := writeTemp(t, tmp, "m.yaml", `
name: N
description: D
commands: []
`)
	outPath := filepath.Join(tmp, "out.yaml")

	_, err := execute(t, "run", "-m", mf, "-o", outPath, "--host", "ap.lab", "--user", "super", "--password", "sp-admin")
	require.NoError(t, err)

	rep := readReport(t, outPath)
	require.Equal(t, "116.0.0.0.1", rep.Device.Version)
	require.Empty(t, rep.Device.Serial)
	require.Len(t, rep.Device.Errors, 1)
	require.Contains(t, rep.Device.Errors[0], "Serial#:")
	require.Empty(t, rep.Results)
}

func TestRunCmd_ConnectFailureStillWritesReport(t *testing.T) {
	resetConfig()
	stubDevice(t, newTestDevice())
	tmp := t.TempDir()
	mf := writeTemp(t, tmp, "m.yaml", auditManifest)
	outPath := filepath.Join(tmp, "out.yaml")

	_, err := execute(t, "run", "-m", mf, "-o", outPath, "--password", "wrong")
	require.ErrorIs(t, err, session.ErrClosed)

	rep := readReport(t, outPath)
	require.Equal(t, "ap.lab", rep.Device.Host)
	require.Empty(t, rep.Results)
}

func TestRunCmd_Noop_WritesPlannedLines(t *testing.T) {
	resetConfig()
	origSession := newSessionFunc
	t.Cleanup(func() { newSessionFunc = origSession })
	newSessionFunc = func(session.Config, ...session.Option) (*session.Session, error) {
		return nil, errors.New("noop must not connect")
	}

	tmp := t.TempDir()
	mf := writeTemp(t, tmp, "m.yaml", auditManifest)
	outPath := filepath.Join(tmp, "out.yaml")

	_, err := execute(t, "run", "-m", mf, "-o", outPath, "--noop")
	require.NoError(t, err)

	b, err := os.ReadFile(filepath.Join(tmp, "debug.out"))
	require.NoError(t, err)
	require.Equal(t, "# Planned lines (3 commands)\n"+
		"get version\n"+
		"get boarddata\n"+
		"get wlanlist\n"+
		"!v54!\n"+
		"cat /writable/etc/system.conf\n"+
		"rkscli\n"+
		"get boarddata\n", string(b))

	rep := readReport(t, outPath)
	require.Equal(t, []string{
		"get version", "get boarddata",
		"get wlanlist", "!v54!", "cat /writable/etc/system.conf", "rkscli", "get boarddata",
	}, rep.Planned)
	require.Empty(t, rep.Results)
}

func TestRunCmd_Noop_UsesConfiguredPrompts(t *testing.T) {
	resetConfig()
	tmp := t.TempDir()
	cfg := writeTemp(t, tmp, "rks.yaml", `
prompts:
  enter_general: "!shell!"
  enter_vendor: "vendorcli"
`)
	mf := writeTemp(t, tmp, "m.yaml", auditManifest)
	outPath := filepath.Join(tmp, "out.yaml")

	_, err := execute(t, "run", "-m", mf, "-o", outPath, "--noop", "--config", cfg)
	require.NoError(t, err)
	rep := readReport(t, outPath)
	require.Equal(t, []string{
		"get version", "get boarddata",
		"get wlanlist", "!shell!", "cat /writable/etc/system.conf", "vendorcli", "get boarddata",
	}, rep.Planned)
}

func TestRunCmd_Validation(t *testing.T) {
	tmp := t.TempDir()
	mf := writeTemp(t, tmp, "m.yaml", auditManifest)
	bad := writeTemp(t, tmp, "bad.yaml", `
name: N
description: D
commands:
  - command: ls
`)

	for _, tc := range []struct {
		args []string
		want string
	}{
		{[]string{"run", "-o", filepath.Join(tmp, "o.yaml")}, "--manifest is required"},
		{[]string{"run", "-m", mf}, "--out is required"},
		{[]string{"run", "-m", mf, "-o", filepath.Join(tmp, "o.json"), "--format", "json"}, "--format must be yaml or text"},
		{[]string{"run", "-m", bad, "-o", filepath.Join(tmp, "o.yaml")}, "commands[0].mode is required"},
		{[]string{"run", "-m", filepath.Join(tmp, "missing.yaml"), "-o", filepath.Join(tmp, "o.yaml")}, "failed to read manifest"},
	} {
		resetConfig()
		stubDevice(t, newTestDevice())
		_, err := execute(t, tc.args...)
		require.Error(t, err, tc.args)
		require.Contains(t, err.Error(), tc.want)
	}
}
