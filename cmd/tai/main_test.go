package main

import (
	"bytes"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tai-edu/tai/internal/devserver"
)

type cli struct {
	apiURL string
	state  string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)
	t.Setenv("TAI_CONFIG", "")
	t.Setenv("TAI_STATE_BACKEND", "file")

	srv := httptest.NewServer(devserver.New().Handler())
	t.Cleanup(srv.Close)
	return &cli{apiURL: srv.URL, state: filepath.Join(dir, "state.json")}
}

func (c *cli) run(args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--api-url", c.apiURL, "--state", c.state))
	err := cmd.Execute()
	return out.String(), err
}

var devicePattern = regexp.MustCompile(`device: (device_[a-f0-9]{32})`)

func TestWhoamiKeepsDeviceID(t *testing.T) {
	c := newCLI(t)

	out, err := c.run("whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "role:   (none)")
	first := devicePattern.FindStringSubmatch(out)
	require.Len(t, first, 2)

	out, err = c.run("whoami")
	require.NoError(t, err)
	assert.Contains(t, out, first[1])
}

func TestTeacherAndStudentFlow(t *testing.T) {
	c := newCLI(t)

	out, err := c.run("select-role", "teacher")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as teacher")

	out, err = c.run("create-course", "Physics", "phy1")
	require.NoError(t, err)
	assert.Contains(t, out, "Created Physics (PHY1)")

	out, err = c.run("courses")
	require.NoError(t, err)
	assert.Contains(t, out, "PHY1")

	out, err = c.run("switch-role")
	require.NoError(t, err)
	assert.Contains(t, out, "Role cleared")

	out, err = c.run("whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "role:   (none)")

	_, err = c.run("select-role", "student")
	require.NoError(t, err)

	out, err = c.run("courses")
	require.NoError(t, err)
	assert.Contains(t, out, "No courses yet.")

	out, err = c.run("join", " phy1 ")
	require.NoError(t, err)
	assert.Contains(t, out, "Joined Physics (PHY1)")

	_, err = c.run("join", "NOPE1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "course not found")
}

func TestCommandsNeedRole(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("courses")
	assert.ErrorIs(t, err, errNoRole)

	_, err = c.run("join", "ABC")
	assert.ErrorIs(t, err, errNoRole)
}

func TestSelectRoleRejectsUnknownRole(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("select-role", "wizard")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown role")
}

func TestStudentCannotCreateCourse(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("select-role", "student")
	require.NoError(t, err)

	_, err = c.run("create-course", "Art", "ART1")
	assert.ErrorContains(t, err, "only teachers can create courses")
}
