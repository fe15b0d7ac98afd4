package render

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPython puts a fake python interpreter first on PATH. It records one
// line in the returned count file per run and appends the script it was
// given to the returned script file.
func stubPython(t *testing.T) (count, script string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub interpreter is a shell script")
	}

	dir := t.TempDir()
	count = filepath.Join(dir, "count")
	script = filepath.Join(dir, "script.py")
	stub := fmt.Sprintf("#!/bin/sh\necho run >> %q\ncat \"$1\" >> %q\n",
		count, script)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "python"), []byte(stub), 0755))

	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
	return count, script
}

func runs(t *testing.T, count string) int {
	bs, err := os.ReadFile(count)
	if os.IsNotExist(err) {
		return 0
	}
	require.NoError(t, err)
	return strings.Count(string(bs), "run")
}

func readScript(t *testing.T, script string) string {
	bs, err := os.ReadFile(script)
	require.NoError(t, err)
	return string(bs)
}

func TestPlotProfilesRunsOnce(t *testing.T) {
	count, script := stubPython(t)
	xs := []float64{0.5, 1.5, 2.5}
	profs := [][]float64{{1, 2, 3}, {2, 3, 4}}

	PlotProfiles("", xs, profs, 1, 4, "title", "x", "mean")
	assert.Equal(t, 1, runs(t, count))
	assert.Equal(t, 1, strings.Count(readScript(t, script), "plt.show()"))

	PlotProfiles("profiles.png", xs, profs, 1, 4, "title", "x", "mean")
	assert.Equal(t, 2, runs(t, count))
	text := readScript(t, script)
	assert.Equal(t, 1, strings.Count(text, "plt.show()"),
		"saving a figure does not replay the shown one")
	assert.Contains(t, text, "profiles.png")
}

func TestShowAnimation(t *testing.T) {
	count, script := stubPython(t)
	dims := [3]int{4, 2, 1}
	a, err := NewAnimation(series(t, 3, dims), series(t, 3, dims),
		&Options{Title: "density", Width: 64, Height: 64, ProfilePanel: true})
	require.NoError(t, err)

	a.Show(10)
	assert.Equal(t, 1, runs(t, count))

	text := readScript(t, script)
	assert.Contains(t, text, "lo, hi = 0, 23")
	assert.Contains(t, text, "vmin=lo, vmax=hi")
	assert.Contains(t, text, "frames=len(frames), interval=100)")
	assert.Contains(t, text, "pax.set_ylim(plo, phi)")
	assert.Contains(t, text, `ax.set_title("density")`)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(text), "plt.show()"))
}

func TestShowScript(t *testing.T) {
	dims := [3]int{2, 2, 1}
	a, err := NewAnimation(series(t, 2, dims), series(t, 2, dims),
		&Options{Width: 64, Height: 64})
	require.NoError(t, err)

	lines := a.showScript(0)
	text := strings.Join(lines, "\n")
	assert.Contains(t, text, "frames = np.array([[[0,1],[2,3]],[[4,5],[6,7]]])")
	assert.Contains(t, text, "fig, ax = plt.subplots()")
	assert.NotContains(t, text, "pax")
	assert.Contains(t, text, "interval=1000)")
}
