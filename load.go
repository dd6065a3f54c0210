package palnorm

import (
	"encoding/json"
	"image"
	_ "image/png" // register the PNG decoder for archive members
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/bodgit/palnorm/indexed"
	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"
)

const imageExt = ".png"

func memberName(file string) string {
	return SanitizeName(strings.TrimSuffix(path.Base(filepath.ToSlash(file)), imageExt))
}

func (n *Normalizer) add(c *Collection, file string, m image.Image, err error) {
	name := memberName(file)
	if err == nil {
		err = c.Add(name, m)
	} else {
		c.Fail(name, errors.Wrapf(err, "read %s", file))
	}
	if errors.Is(err, ErrDuplicateName) {
		n.logger.Printf("Ignoring \"%s\", %v\n", file, err)
	}
}

// LoadDir reads every .png file directly inside dir into a collection.
// Files that cannot be decoded are recorded as failed members.
func (n *Normalizer) LoadDir(dir, name string) (*Collection, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	c := NewCollection(name)
	for _, e := range entries {
		if e.Name()[0] == '.' || !e.Type().IsRegular() || filepath.Ext(e.Name()) != imageExt {
			continue
		}
		file := filepath.Join(dir, e.Name())
		m, err := imgio.Open(file)
		n.add(c, file, m, err)
	}
	return c, nil
}

func hidden(name string) bool {
	for _, elem := range strings.Split(name, "/") {
		if strings.HasPrefix(elem, ".") || elem == "__MACOSX" {
			return true
		}
	}
	return false
}

func decodeZipFile(f *zip.File) (image.Image, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	m, _, err := image.Decode(rc)
	return m, err
}

// LoadZip reads the .png members of the ZIP archive at file, one collection
// per directory inside the archive, returned in directory order.
func (n *Normalizer) LoadZip(file string) ([]*Collection, error) {
	r, err := zip.OpenReader(file)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	collections := make(map[string]*Collection)
	for _, f := range r.File {
		if f.FileInfo().IsDir() || hidden(f.Name) || path.Ext(f.Name) != imageExt {
			continue
		}
		dir := path.Dir(f.Name)
		c, ok := collections[dir]
		if !ok {
			c = NewCollection(dir)
			collections[dir] = c
		}
		m, err := decodeZipFile(f)
		n.add(c, f.Name, m, err)
	}

	dirs := make([]string, 0, len(collections))
	for dir := range collections {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	out := make([]*Collection, 0, len(dirs))
	for _, dir := range dirs {
		out = append(out, collections[dir])
	}
	return out, nil
}

// LoadBundle decodes a JSON object mapping image names to records into a
// single collection. Records that fail validation are recorded as failed
// members.
func (n *Normalizer) LoadBundle(r io.Reader, name string) (*Collection, error) {
	var bundle map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&bundle); err != nil {
		return nil, errors.Wrap(indexed.ErrInvalidInput, err.Error())
	}

	keys := make([]string, 0, len(bundle))
	for key := range bundle {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	c := NewCollection(name)
	for _, key := range keys {
		raw := bundle[key]
		key := SanitizeName(key)

		var rec indexed.Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			c.Fail(key, errors.Wrap(indexed.ErrInvalidInput, err.Error()))
			continue
		}
		m, err := rec.Image()
		if err != nil {
			c.Fail(key, err)
			continue
		}
		if err := c.Add(key, m); err != nil {
			n.logger.Printf("Ignoring \"%s\", %v\n", key, err)
		}
	}
	return c, nil
}
