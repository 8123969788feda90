package classify

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/hyperjump/annai/internal/models"
)

// readRootFile reads a top-level file from the snapshot root. Missing or
// unreadable files report ok=false; classification carries on without them.
func readRootFile(snap *models.RepoSnapshot, name string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(snap.Root, name))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// scriptOrder is the order run commands are reported in when present in
// package.json scripts.
var scriptOrder = []string{"dev", "build", "start", "test"}

// npmRunCommands extracts `npm run <script>` commands from the repo's
// package.json. A malformed or absent package.json yields no commands.
func (v *repoView) npmRunCommands() []string {
	raw, ok := readRootFile(v.snap, "package.json")
	if !ok {
		return nil
	}
	var pkg struct {
		Scripts map[string]string `json:"scripts"`
	}
	if err := json.Unmarshal([]byte(raw), &pkg); err != nil {
		return nil
	}
	var cmds []string
	for _, name := range scriptOrder {
		if _, ok := pkg.Scripts[name]; ok {
			cmds = append(cmds, "npm run "+name)
		}
	}
	return cmds
}
