package metadata

import (
	"encoding/json"
	"encoding/xml"
	"regexp"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v3"
)

func parseGoMod(content []byte, p *Project) {
	p.Language = "Go"
	p.BuildSystem = "Go modules"

	inRequire := false
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "require ("):
			inRequire = true
		case inRequire && line == ")":
			inRequire = false
		case inRequire:
			if fields := strings.Fields(line); len(fields) >= 1 && !strings.HasPrefix(fields[0], "//") {
				p.Dependencies = append(p.Dependencies, fields[0])
			}
		case strings.HasPrefix(line, "require "):
			if fields := strings.Fields(line); len(fields) >= 2 {
				p.Dependencies = append(p.Dependencies, fields[1])
			}
		}
	}
	p.Framework = detectFramework(p.Dependencies, []frameworkRule{
		{"github.com/gin-gonic/gin", "Gin"},
		{"github.com/labstack/echo", "Echo"},
		{"github.com/spf13/cobra", "Cobra CLI"},
	})
}

func parseCargoToml(content []byte, p *Project) {
	var manifest struct {
		Package struct {
			Name    string `toml:"name"`
			Version string `toml:"version"`
		} `toml:"package"`
		Dependencies    map[string]any `toml:"dependencies"`
		DevDependencies map[string]any `toml:"dev-dependencies"`
	}
	if err := toml.Unmarshal(content, &manifest); err != nil {
		return
	}

	p.Language = "Rust"
	p.BuildSystem = "Cargo"
	p.Version = manifest.Package.Version
	p.Dependencies = sortedKeys(manifest.Dependencies)
	p.Framework = detectFramework(p.Dependencies, []frameworkRule{
		{"actix-web", "Actix"},
		{"rocket", "Rocket"},
		{"tokio", "Tokio"},
	})
	if _, ok := manifest.DevDependencies["proptest"]; ok {
		p.TestFramework = "proptest"
	}
}

func parsePackageJSON(content []byte, p *Project) {
	var manifest struct {
		Version         string            `json:"version"`
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(content, &manifest); err != nil {
		return
	}

	p.Language = "JavaScript/TypeScript"
	p.BuildSystem = "npm"
	p.Version = manifest.Version
	for name := range manifest.Dependencies {
		p.Dependencies = append(p.Dependencies, name)
	}
	sort.Strings(p.Dependencies)
	p.Framework = detectFramework(p.Dependencies, []frameworkRule{
		{"next", "Next.js"},
		{"react", "React"},
		{"vue", "Vue"},
		{"express", "Express"},
	})
	p.TestFramework = detectFramework(sortedKeysString(manifest.DevDependencies), []frameworkRule{
		{"jest", "jest"},
		{"vitest", "vitest"},
		{"mocha", "mocha"},
	})
}

func parsePyprojectToml(content []byte, p *Project) {
	var manifest struct {
		Project struct {
			Version      string   `toml:"version"`
			Dependencies []string `toml:"dependencies"`
		} `toml:"project"`
		Tool struct {
			Poetry struct {
				Version      string         `toml:"version"`
				Dependencies map[string]any `toml:"dependencies"`
			} `toml:"poetry"`
		} `toml:"tool"`
	}
	if err := toml.Unmarshal(content, &manifest); err != nil {
		return
	}

	p.Language = "Python"
	p.BuildSystem = "pyproject"
	p.Version = manifest.Project.Version
	if p.Version == "" {
		p.Version = manifest.Tool.Poetry.Version
	}
	for _, spec := range manifest.Project.Dependencies {
		p.Dependencies = append(p.Dependencies, dependencyName(spec))
	}
	for _, name := range sortedKeys(manifest.Tool.Poetry.Dependencies) {
		if name != "python" {
			p.Dependencies = append(p.Dependencies, name)
		}
	}
	p.Framework = detectFramework(p.Dependencies, []frameworkRule{
		{"django", "Django"},
		{"flask", "Flask"},
		{"fastapi", "FastAPI"},
	})
	if containsDep(p.Dependencies, "pytest") {
		p.TestFramework = "pytest"
	}
}

func parsePubspecYaml(content []byte, p *Project) {
	var manifest struct {
		Version      string         `yaml:"version"`
		Dependencies map[string]any `yaml:"dependencies"`
	}
	if err := yaml.Unmarshal(content, &manifest); err != nil {
		return
	}

	p.Language = "Dart"
	p.BuildSystem = "pub"
	p.Version = manifest.Version
	p.Dependencies = sortedKeys(manifest.Dependencies)
	if _, ok := manifest.Dependencies["flutter"]; ok {
		p.Framework = "Flutter"
	}
}

func parsePomXML(content []byte, p *Project) {
	var manifest struct {
		Version      string `xml:"version"`
		Dependencies struct {
			Dependency []struct {
				ArtifactID string `xml:"artifactId"`
			} `xml:"dependency"`
		} `xml:"dependencies"`
	}
	if err := xml.Unmarshal(content, &manifest); err != nil {
		return
	}

	p.Language = "Java"
	p.BuildSystem = "Maven"
	p.Version = manifest.Version
	for _, dep := range manifest.Dependencies.Dependency {
		p.Dependencies = append(p.Dependencies, dep.ArtifactID)
	}
	p.Framework = detectFramework(p.Dependencies, []frameworkRule{
		{"spring-boot-starter", "Spring Boot"},
		{"spring-core", "Spring"},
	})
	for _, dep := range p.Dependencies {
		if strings.HasPrefix(dep, "junit") {
			p.TestFramework = "JUnit"
		}
	}
}

var gradleDependencyRe = regexp.MustCompile(`(?m)^\s*(?:implementation|api|testImplementation)\s*\(?['"]([^'"]+)['"]`)

func parseGradle(content []byte, p *Project) {
	p.BuildSystem = "Gradle"
	p.Language = "Java"
	for _, match := range gradleDependencyRe.FindAllStringSubmatch(string(content), -1) {
		p.Dependencies = append(p.Dependencies, match[1])
	}
}

var gemfileRe = regexp.MustCompile(`(?m)^\s*gem\s+['"]([\w-]+)['"]`)

func parseGemfile(content []byte, p *Project) {
	p.Language = "Ruby"
	p.BuildSystem = "Bundler"
	for _, match := range gemfileRe.FindAllStringSubmatch(string(content), -1) {
		p.Dependencies = append(p.Dependencies, match[1])
	}
	p.Framework = detectFramework(p.Dependencies, []frameworkRule{
		{"rails", "Rails"},
		{"sinatra", "Sinatra"},
	})
	if containsDep(p.Dependencies, "rspec") {
		p.TestFramework = "RSpec"
	}
}

var (
	cmakeVersionRe = regexp.MustCompile(`project\([^)]*VERSION\s+([^\s)]+)`)
	cmakePackageRe = regexp.MustCompile(`find_package\((\w+)`)
)

func parseCMake(content []byte, p *Project) {
	p.Language = "C/C++"
	p.BuildSystem = "CMake"
	if match := cmakeVersionRe.FindStringSubmatch(string(content)); match != nil {
		p.Version = match[1]
	}
	for _, match := range cmakePackageRe.FindAllStringSubmatch(string(content), -1) {
		p.Dependencies = append(p.Dependencies, match[1])
	}
}

var makefileVersionRe = regexp.MustCompile(`(?m)^VERSION\s*[:?]?=\s*(\S+)`)

func parseMakefile(content []byte, p *Project) {
	p.BuildSystem = "Make"
	if match := makefileVersionRe.FindStringSubmatch(string(content)); match != nil {
		p.Version = match[1]
	}
}

// dependencyName strips the version constraint from a PEP 508 spec.
func dependencyName(spec string) string {
	for i, r := range spec {
		if !isNameRune(r) {
			return strings.TrimSpace(spec[:i])
		}
	}
	return strings.TrimSpace(spec)
}

func isNameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '-' || r == '_' || r == '.':
		return true
	}
	return false
}

type frameworkRule struct {
	dep  string
	name string
}

// detectFramework returns the first rule whose dependency is present.
// Rules are ordered so detection stays deterministic.
func detectFramework(deps []string, rules []frameworkRule) string {
	present := make(map[string]bool, len(deps))
	for _, dep := range deps {
		present[dep] = true
	}
	for _, rule := range rules {
		if present[rule.dep] {
			return rule.name
		}
	}
	return ""
}

func containsDep(deps []string, want string) bool {
	for _, dep := range deps {
		if dep == want {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func sortedKeysString(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
