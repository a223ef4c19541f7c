// file: internal/resources/descriptions.go
package resources

import (
	"gopkg.in/yaml.v3"

	"github.com/dkoosis/manifest-mcp/internal/manifest"
)

// defaultDescriptions are published for well-known resource names when the
// manifest does not describe them itself.
var defaultDescriptions = map[string]string{
	"company-overall-information.md": "Company background and history",
	"name-instructions.md":           "Instructions for addressing users by name",
	"system-instruction.md":          "System-level instructions for security and output",
	"engineering-handbook.md":        "Engineering component and severity mapping",
}

// descriptionsFile is the layout of the manifest's descriptions.yaml:
//
//	resources:
//	  handbook.md: Engineering handbook
type descriptionsFile struct {
	Resources map[string]string `yaml:"resources"`
}

type descriptionSet map[string]string

func (d descriptionSet) lookup(name string) string {
	if desc, ok := d[name]; ok {
		return desc
	}
	return defaultDescriptions[name]
}

// descriptions loads descriptions.yaml. A missing or malformed file leaves
// only the defaults in effect.
func (s *Store) descriptions() descriptionSet {
	data, err := s.fs.ReadFile(manifest.DescriptionsFile)
	if err != nil {
		if !manifest.IsNotExist(err) {
			s.logger.Warn("Failed to read resource descriptions.", "error", err)
		}
		return nil
	}

	var file descriptionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		s.logger.Warn("Ignoring malformed resource descriptions.", "file", manifest.DescriptionsFile, "error", err)
		return nil
	}
	return descriptionSet(file.Resources)
}
