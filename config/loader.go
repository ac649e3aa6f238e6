package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"golang.org/x/crypto/ssh/terminal"
)

// A Loader loads configuration files from .hcl files on disk.
//
// The zero value is ready to load files.
type Loader struct {
	parser *hclparse.Parser
}

// Root finds the root directory of a project. The returned string is the
// absolute path to the project on disk.
//
// The root directory is determined by the file .cachectl/root existing. The
// contents of the file are not significant. If the given dir does not contain
// a project, parent directories are traversed until a project is found.
//
// An error is returned if the dir cannot be opened. An empty string is
// returned if no project root was found.
func (l *Loader) Root(dir string) (string, error) {
	// Check that dir itself exists
	if _, err := os.Stat(dir); err != nil {
		return "", err
	}
	rootfile := filepath.Join(dir, ".cachectl", "root")
	stat, err := os.Stat(rootfile)
	if err == nil && !stat.IsDir() {
		// Match
		abs, err := filepath.Abs(dir)
		if err != nil {
			return "", err
		}
		return abs, nil
	}

	parent := filepath.Dir(dir)
	if parent == dir || parent[len(parent)-1] == filepath.Separator {
		return "", nil
	}

	return l.Root(parent)
}

// Load loads all the config files from the given root directory, traversing
// into sub directories, and decodes the merged result.
//
// Every cache block must have a distinct name.
func (l *Loader) Load(root string) (*File, hcl.Diagnostics) {
	if l.parser == nil {
		l.parser = hclparse.NewParser()
	}

	var names []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !isConfigFile(path) {
			return nil
		}
		names = append(names, path)
		return nil
	})
	if err != nil {
		return nil, diagErr(err)
	}
	sort.Strings(names)

	var bodies []hcl.Body
	var diags hcl.Diagnostics
	for _, name := range names {
		f, d := l.parser.ParseHCLFile(name)
		diags = append(diags, d...)
		if f != nil && f.Body != nil {
			bodies = append(bodies, f.Body)
		}
	}
	if diags.HasErrors() {
		return nil, diags
	}

	cfg := &File{}
	diags = append(diags, gohcl.DecodeBody(hcl.MergeBodies(bodies), nil, cfg)...)
	if diags.HasErrors() {
		return nil, diags
	}

	seen := make(map[string]bool, len(cfg.Caches))
	for _, c := range cfg.Caches {
		if seen[c.Name] {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate cache block",
				Detail:   fmt.Sprintf("A cache named %q is declared more than once.", c.Name),
			})
		}
		seen[c.Name] = true
	}
	if diags.HasErrors() {
		return nil, diags
	}

	return cfg, nil
}

// WriteDiagnostics writes diagnostics as a human readable string to w. It
// should only be used for diagnostics that originate from files loaded by
// Loader.
//
// If a TTY is attached, the output will be colorized and wrap at the terminal
// width. Otherwise, wrap will occur at 78 characters and output won't contain
// ANSI escape characters.
func (l *Loader) WriteDiagnostics(w io.Writer, diags hcl.Diagnostics) {
	var files map[string]*hcl.File
	if l.parser != nil {
		files = l.parser.Files()
	}
	cols, _, err := terminal.GetSize(0)
	if err != nil {
		cols = 78
	}
	color := terminal.IsTerminal(0)
	wr := hcl.NewDiagnosticTextWriter(w, files, uint(cols), color)
	if err := wr.WriteDiagnostics(diags); err != nil {
		fmt.Fprintln(w, err)
	}
}

func isConfigFile(filename string) bool {
	return filepath.Ext(filename) == ".hcl"
}

// diagErr converts a native error to diagnostics
func diagErr(err error) hcl.Diagnostics {
	return hcl.Diagnostics{{Severity: hcl.DiagError, Summary: err.Error()}}
}
