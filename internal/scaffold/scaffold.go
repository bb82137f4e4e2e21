// Package scaffold embeds the starter project written by "traitgen init":
// a commented traitgen.yml, an assets/ directory and an .mcp.json entry for
// the MCP server.
package scaffold

import (
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// TemplateFS contains the starter project. Walk from "template" to iterate
// over all files.
//
//go:embed all:template
var TemplateFS embed.FS

const templateRoot = "template"

// mcpConfig represents the structure of a .mcp.json file.
type mcpConfig struct {
	MCPServers map[string]json.RawMessage `json:"mcpServers"`
}

// MCPEntry is the MCP server configuration for the traitgen binary.
var MCPEntry = json.RawMessage(`{
  "type": "stdio",
  "command": "traitgen",
  "args": ["serve-mcp"]
}`)

// Init writes the starter project into dir and registers the MCP server in
// dir/.mcp.json. Existing files are kept unless force is set. Progress lines
// go to w.
func Init(dir string, force bool, w io.Writer) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving project root: %w", err)
	}

	err = fs.WalkDir(TemplateFS, templateRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(templateRoot, path)
		if err != nil {
			return err
		}
		dest := filepath.Join(abs, rel)

		if d.IsDir() {
			return os.MkdirAll(dest, 0o755)
		}

		if !force {
			if _, err := os.Stat(dest); err == nil {
				fmt.Fprintf(w, "  skipped %s (exists, use --force to overwrite)\n", dotRelative(abs, dest))
				return nil
			}
		}

		data, err := TemplateFS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading embedded %s: %w", path, err)
		}
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", dest, err)
		}

		fmt.Fprintf(w, "  created %s\n", dotRelative(abs, dest))
		return nil
	})
	if err != nil {
		return fmt.Errorf("copying template: %w", err)
	}

	if err := os.MkdirAll(filepath.Join(abs, "output"), 0o755); err != nil {
		return err
	}

	return mergeMCPConfig(filepath.Join(abs, ".mcp.json"), force, w)
}

// mergeMCPConfig creates or merges the traitgen entry into .mcp.json.
func mergeMCPConfig(mcpPath string, force bool, w io.Writer) error {
	var cfg mcpConfig

	data, err := os.ReadFile(mcpPath)
	if err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parsing %s: %w", mcpPath, err)
		}
	}

	if cfg.MCPServers == nil {
		cfg.MCPServers = make(map[string]json.RawMessage)
	}

	if _, exists := cfg.MCPServers["traitgen"]; exists && !force {
		fmt.Fprintln(w, "  skipped .mcp.json traitgen entry (exists, use --force to overwrite)")
		return nil
	}

	cfg.MCPServers["traitgen"] = MCPEntry

	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling .mcp.json: %w", err)
	}
	if err := os.WriteFile(mcpPath, append(out, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", mcpPath, err)
	}

	action := "created"
	if data != nil {
		action = "updated"
	}
	fmt.Fprintf(w, "  %s .mcp.json with traitgen MCP server\n", action)
	return nil
}

// dotRelative returns a display path relative to the project root, prefixed
// with "./".
func dotRelative(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return "./" + rel
}
