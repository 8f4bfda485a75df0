package survey

import "strings"

// PathIndex maps row names to their flat, slash-delimited paths. Names are
// kept in declaration order so callers iterating the index see rows in the
// same order as the form.
type PathIndex struct {
	paths map[string]string
	names []string
}

// NewPathIndex computes the flat path of every answerable row and every
// group begin row. Rows of other types (group ends, unknown types) have no
// path.
func NewPathIndex(rows []Row) PathIndex {
	idx := PathIndex{paths: make(map[string]string, len(rows))}
	var opened []string
	for _, row := range rows {
		name := row.Name()
		switch {
		case row.Type.IsGroupBegin():
			opened = append(opened, name)
			idx.add(name, strings.Join(opened, "/"))
		case row.Type.IsGroupEnd():
			if len(opened) > 0 {
				opened = opened[:len(opened)-1]
			}
		case row.Type.IsAnswerable():
			if len(opened) == 0 {
				idx.add(name, name)
				continue
			}
			idx.add(name, strings.Join(opened, "/")+"/"+name)
		}
	}
	return idx
}

func (p *PathIndex) add(name, path string) {
	if _, ok := p.paths[name]; !ok {
		p.names = append(p.names, name)
	}
	p.paths[name] = path
}

// Path returns the flat path for name.
func (p PathIndex) Path(name string) (string, bool) {
	path, ok := p.paths[name]
	return path, ok
}

// Names returns indexed row names in declaration order.
func (p PathIndex) Names() []string {
	return append([]string(nil), p.names...)
}

// IsChildOf reports whether name sits exactly one level below groupPath.
// An empty groupPath means the form root.
func (p PathIndex) IsChildOf(name, groupPath string) bool {
	path, ok := p.paths[name]
	if !ok {
		return false
	}
	if groupPath == "" {
		return path == name
	}
	return path == groupPath+"/"+name
}

// Descendants returns the names of all rows nested anywhere under
// groupPath, in declaration order.
func (p PathIndex) Descendants(groupPath string) []string {
	prefix := groupPath + "/"
	var out []string
	for _, name := range p.names {
		if strings.HasPrefix(p.paths[name], prefix) {
			out = append(out, name)
		}
	}
	return out
}

// QPath converts a flat path into the dash-delimited form used to key
// supplemental details.
func QPath(path string) string {
	return strings.ReplaceAll(path, "/", "-")
}
