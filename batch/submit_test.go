package batch

import (
	"bytes"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireCommands(t *testing.T, names ...string) {
	for _, name := range names {
		if _, err := exec.LookPath(name); err != nil {
			t.Skipf("'%s' is not on PATH", name)
		}
	}
}

func TestCommandSubmitter(t *testing.T) {
	requireCommands(t, "true", "false")

	assert.NoError(t, (&CommandSubmitter{Command: "true"}).Submit("job.sh"))
	assert.Error(t, (&CommandSubmitter{Command: "false"}).Submit("job.sh"))
	assert.Error(t, (&CommandSubmitter{
		Command: filepath.Join(t.TempDir(), "sbatch"),
	}).Submit("job.sh"))
}

func TestRunCommandSubmitterFailure(t *testing.T) {
	requireCommands(t, "false")

	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	defer log.SetOutput(os.Stderr)

	dir := t.TempDir()
	s := NewSweep("failing", "in.xml", []int{2, 4, 8})
	paths, err := s.Run(dir, &CommandSubmitter{Command: "false"})
	require.NoError(t, err)
	require.Len(t, paths, 3)

	for _, path := range paths {
		_, err := os.Stat(path)
		assert.NoError(t, err)
		assert.Contains(t, buf.String(), "Submitting "+path+" failed")
	}
	assert.Equal(t, 3, strings.Count(buf.String(), "failed"))
}
