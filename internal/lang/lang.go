package lang

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Spec describes how to materialize and execute source code for one
// language. Command is run through `bash -c` inside the session
// workspace; the placeholders {file} and {entry} are replaced with the
// source filename and its extension-less stem before execution.
type Spec struct {
	Key           string `yaml:"key"`
	Extension     string `yaml:"extension"`
	SourceName    string `yaml:"source_name"`
	Command       string `yaml:"command"`
	DiscoverEntry bool   `yaml:"discover_entry"`
	Query         bool   `yaml:"query"`
}

// publicClassRe matches a public-class-style declaration; the first
// capture names the entry symbol.
var publicClassRe = regexp.MustCompile(`public\s+class\s+([A-Za-z_]\w*)`)

// EntryClass returns the first public class name declared in source,
// or "" if there is none.
func EntryClass(source string) string {
	m := publicClassRe.FindStringSubmatch(source)
	if m == nil {
		return ""
	}
	return m[1]
}

// Materialize resolves the source filename and shell command for a
// concrete piece of code. For entry-discovery languages the filename
// follows the first public class declared in the code, falling back to
// the spec's default source name.
func (s Spec) Materialize(code string) (filename, command string) {
	filename = s.SourceName
	if s.DiscoverEntry {
		if name := EntryClass(code); name != "" {
			filename = name + "." + s.Extension
		}
	}
	stem := strings.TrimSuffix(filename, "."+s.Extension)
	command = strings.ReplaceAll(s.Command, "{file}", filename)
	command = strings.ReplaceAll(command, "{entry}", stem)
	return filename, command
}

// Registry maps language keys to their specs.
type Registry struct {
	specs map[string]Spec
}

// Builtin returns a registry with the stock language set.
func Builtin() *Registry {
	r := &Registry{specs: make(map[string]Spec)}
	for _, s := range []Spec{
		{Key: "python", Extension: "py", SourceName: "user_code.py", Command: "python3 -u {file}"},
		{Key: "c", Extension: "c", SourceName: "user_code.c", Command: "gcc -fdiagnostics-color=never {file} -o main && ./main"},
		{Key: "cpp", Extension: "cpp", SourceName: "user_code.cpp", Command: "g++ -fdiagnostics-color=never {file} -o main && ./main"},
		{Key: "java", Extension: "java", SourceName: "user_code.java", Command: "javac {file} && java {entry}", DiscoverEntry: true},
		{Key: "js", Extension: "js", SourceName: "user_code.js", Command: "node {file}"},
		{Key: "php", Extension: "php", SourceName: "user_code.php", Command: "php {file}"},
		{Key: "sql", Extension: "sql", SourceName: "user_code.sql", Command: "sqlite3 ephemeral.db < {file}", Query: true},
	} {
		r.specs[s.Key] = s
	}
	return r
}

// Lookup returns the spec for a language key.
func (r *Registry) Lookup(key string) (Spec, bool) {
	s, ok := r.specs[key]
	return s, ok
}

// Register adds or replaces a spec.
func (r *Registry) Register(s Spec) {
	r.specs[s.Key] = s
}

// Keys returns the registered language keys, sorted.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.specs))
	for k := range r.specs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ByExtension returns the spec whose extension matches ext (without
// the leading dot).
func (r *Registry) ByExtension(ext string) (Spec, bool) {
	for _, k := range r.Keys() {
		if r.specs[k].Extension == ext {
			return r.specs[k], true
		}
	}
	return Spec{}, false
}

// LoadFile merges language specs from a YAML file into the registry.
// Entries with a known key replace the built-in spec.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading languages file %s: %w", path, err)
	}

	var specs []Spec
	if err := yaml.Unmarshal(data, &specs); err != nil {
		return fmt.Errorf("parsing languages file %s: %w", path, err)
	}

	for _, s := range specs {
		if s.Key == "" {
			return fmt.Errorf("languages file %s: entry without a key", path)
		}
		r.Register(s)
	}
	return nil
}
