package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSubmitter struct {
	paths []string
	fail  bool
}

func (sub *recordingSubmitter) Submit(path string) error {
	sub.paths = append(sub.paths, path)
	if sub.fail {
		return fmt.Errorf("sbatch: error: invalid partition")
	}
	return nil
}

func TestClusterSelection(t *testing.T) {
	s := NewSweep("parallel", "../input/reyleigh_3D_short.xml",
		[]int{1, 2, 4, 8, 15, 16, 28, 56})

	for _, job := range s.Jobs() {
		if job.Threads < 16 {
			assert.Equal(t, SmallCluster, job.Cluster, "%d threads", job.Threads)
		} else {
			assert.Equal(t, LargeCluster, job.Cluster, "%d threads", job.Threads)
		}
	}
}

func TestScript(t *testing.T) {
	table := []struct {
		threads            int
		clusters, partition string
	}{
		{1, "cm2_tiny", "cm2_tiny"},
		{8, "cm2_tiny", "cm2_tiny"},
		{16, "cm2", "cm2_std"},
		{56, "cm2", "cm2_std"},
	}

	s := NewSweep("parallel", "in.xml", nil)
	for _, test := range table {
		s.Threads = []int{test.threads}
		job := s.Jobs()[0]
		script, err := job.Script()
		require.NoError(t, err)

		lines := strings.Split(script, "\n")
		assert.Equal(t, "#!/bin/bash", lines[0])
		assert.Contains(t, lines, fmt.Sprintf("#SBATCH -J parallel_%d", test.threads))
		assert.Contains(t, lines, "#SBATCH --clusters="+test.clusters)
		assert.Contains(t, lines, "#SBATCH --partition="+test.partition)
		assert.Contains(t, lines, fmt.Sprintf("#SBATCH --cpus-per-task=%d", test.threads))
		assert.Contains(t, lines, "#SBATCH --mem=200mb")
		assert.Contains(t, lines, "#SBATCH --time=00:30:00")
		assert.Contains(t, lines, fmt.Sprintf(
			"OMP_NUM_THREADS=%d src/MolSim in.xml -x -s 4 -p", test.threads,
		))
		assert.NotContains(t, script, "--mail-user")
	}
}

func TestScriptMailUser(t *testing.T) {
	s := NewSweep("p", "in.xml", []int{2})
	s.MailUser = "someone@example.com"
	s.Arguments = ""
	script, err := s.Jobs()[0].Script()
	require.NoError(t, err)
	assert.Contains(t, script, "#SBATCH --export=NONE\n#SBATCH --mail-user=someone@example.com\n#SBATCH --time=")
	assert.True(t, strings.HasSuffix(script, "OMP_NUM_THREADS=2 src/MolSim in.xml\n"))
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	s := NewSweep("parallel", "in.xml", []int{1, 16})
	sub := &recordingSubmitter{fail: true}

	paths, err := s.Run(dir, sub)
	require.NoError(t, err, "submission failures do not stop the sweep")
	assert.Equal(t, []string{
		filepath.Join(dir, "parallel_1.sh"), filepath.Join(dir, "parallel_16.sh"),
	}, paths)
	assert.Equal(t, paths, sub.paths)

	bs, err := os.ReadFile(paths[1])
	require.NoError(t, err)
	assert.Contains(t, string(bs), "OMP_NUM_THREADS=16 ")
}

func TestDryRunSubmitter(t *testing.T) {
	sub := &DryRunSubmitter{Command: "sbatch"}
	assert.NoError(t, sub.Submit("job.sh"))
}
