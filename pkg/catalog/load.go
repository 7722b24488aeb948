package catalog

import (
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/badgekit/pkg/errors"
)

// file is the YAML document layout of a template catalog file.
type file struct {
	Templates []Template `yaml:"templates"`
}

// Load decodes templates from a YAML document of the form
//
//	templates:
//	  - id: conference
//	    name: Conference badge
//	    layout: portrait
//	    print: {widthInches: 4, heightInches: 6, dpi: 300, bleedInches: 0.125}
//	    positions:
//	      name: {x: 50, y: 60, fontSize: 7}
//
// Each template is validated.
func Load(r io.Reader) ([]Template, error) {
	var f file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidTemplate, err, "decode template catalog")
	}
	for _, t := range f.Templates {
		if err := t.Validate(); err != nil {
			return nil, err
		}
	}
	return f.Templates, nil
}

// LoadFile reads templates from a YAML file.
func LoadFile(path string) ([]Template, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "template catalog %s", path)
		}
		return nil, err
	}
	defer f.Close()
	return Load(f)
}
