package plugin

import (
	"os"
	"path/filepath"
	"testing"
)

const testDeclares = `
[[cvars]]
name = "torn"
kind = "integer"

[[commands]]
name = "frag"
args = 0
`

const testPluginLua = `
loaded = true
frags = 0

function setup(config)
  limit = config.limit
  console.on_command("frag", function(name, args) frags = frags + 1 end)
end

function teardown()
  console.set("torn", 1)
end
`

// createTestPluginDir writes a plugin with a manifest, an entry point and a
// declarations file into dir.
func createTestPluginDir(t *testing.T, dir, luaCode string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	manifest := `name = "` + filepath.Base(dir) + `"
version = "1.0.0"
main = "init.lua"
declares = "cvars.toml"

[config]
limit = 20
`
	writeTestFile(t, filepath.Join(dir, ManifestFile), manifest)
	writeTestFile(t, filepath.Join(dir, "cvars.toml"), testDeclares)
	writeTestFile(t, filepath.Join(dir, "init.lua"), luaCode)
	return dir
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
