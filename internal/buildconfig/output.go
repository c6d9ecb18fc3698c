package buildconfig

import "strings"

// Vars are the values substituted into a name template.
type Vars struct {
	Name string
	Hash string
	ID   string
	Ext  string
}

// Expand substitutes the placeholders of a name template. Unknown placeholders
// are left untouched.
func Expand(template string, v Vars) string {
	return strings.NewReplacer(
		"[name]", v.Name,
		"[hash]", v.Hash,
		"[id]", v.ID,
		"[ext]", v.Ext,
	).Replace(template)
}

// BundleName returns the file name of the bundle for an entry.
func (o Output) BundleName(name, hash string) string {
	return Expand(o.Filename, Vars{Name: name, Hash: hash, Ext: "js"})
}

// ChunkName returns the file name of a shared chunk.
func (o Output) ChunkName(id, hash string) string {
	return Expand(o.ChunkFilename, Vars{Name: id, ID: id, Hash: hash, Ext: "js"})
}
