// Package testutil provides shared test helpers for creating config files and stored state fixtures.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/revisit/internal/persistence"
	"github.com/at-ishikawa/revisit/internal/review"
)

// SetupTestConfig creates a config file storing JSON snapshots under tmpDir, with output
// directories next to them. Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()

	dirs := []string{"data", "reports", "exports"}
	for _, d := range dirs {
		require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, d), 0755))
	}

	configContent := fmt.Sprintf(`storage:
  backend: file
  format: json
  directory: %s
  debounce: 10ms
schedule:
  time_zone: UTC
outputs:
  report_directory: %s
  export_directory: %s
`,
		filepath.Join(tmpDir, "data"),
		filepath.Join(tmpDir, "reports"),
		filepath.Join(tmpDir, "exports"),
	)

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}

// StatePath is where SetupTestConfig's storage keeps the state.
func StatePath(tmpDir string) string {
	return filepath.Join(tmpDir, "data", persistence.DefaultKey+".json")
}

// WriteState stores state where a config from SetupTestConfig reads it.
func WriteState(t *testing.T, tmpDir string, state review.State) {
	t.Helper()

	data, err := persistence.JSONCodec{}.Encode(state)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(StatePath(tmpDir), data, 0644))
}

// ReadState loads the state stored under a config from SetupTestConfig.
func ReadState(t *testing.T, tmpDir string) review.State {
	t.Helper()

	data, err := os.ReadFile(StatePath(tmpDir))
	require.NoError(t, err)
	state, err := persistence.JSONCodec{}.Decode(data)
	require.NoError(t, err)
	return state
}

// ExampleState has one subject with a reviewed and a new item, and one unassigned item.
// The reviewed item was completed on lastCompletion with a 10 day interval.
func ExampleState(lastCompletion review.Date) review.State {
	return review.State{
		Categories: []review.Category{},
		Subjects:   []review.Subject{{ID: "s1", Label: "spanish"}},
		Items: []review.Item{
			{ID: "i1", Label: "hola", Visible: true, SubjectID: "s1", RepInfo: &review.RepetitionRecord{Interval: 10, LastCompletion: lastCompletion}},
			{ID: "i2", Label: "adios", Visible: true, SubjectID: "s1"},
			{ID: "i3", Label: "gracias", Visible: true},
		},
	}
}
