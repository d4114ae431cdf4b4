package topology

import (
	"fmt"
	"strings"

	"github.com/matzehuels/topochart/pkg/errors"
)

// Validate reports structural problems: empty or duplicate node IDs and
// links whose endpoints do not resolve. All problems are reported in one
// INVALID_DATASET error. Rendering does not call this.
func (d *Dataset) Validate() error {
	if d == nil {
		return errors.New(errors.ErrCodeInvalidDataset, "dataset is nil")
	}

	var problems []string
	ids := make(map[string]bool, len(d.Nodes))
	for i, n := range d.Nodes {
		switch {
		case n.ID == "":
			problems = append(problems, fmt.Sprintf("node %d: empty id", i))
		case ids[n.ID]:
			problems = append(problems, fmt.Sprintf("duplicate node id %q", n.ID))
		}
		ids[n.ID] = true
	}
	for i, l := range d.Links {
		if !ids[l.Source] {
			problems = append(problems, fmt.Sprintf("link %d: unknown source %q", i, l.Source))
		}
		if !ids[l.Target] {
			problems = append(problems, fmt.Sprintf("link %d: unknown target %q", i, l.Target))
		}
	}

	if len(problems) > 0 {
		return errors.New(errors.ErrCodeInvalidDataset, "%d problem(s): %s",
			len(problems), strings.Join(problems, "; "))
	}
	return nil
}
