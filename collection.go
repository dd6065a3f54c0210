package palnorm

import (
	"image"
	"regexp"
	"sort"

	"github.com/bodgit/palnorm/geometry"
	"github.com/bodgit/palnorm/indexed"
	"github.com/pkg/errors"
)

// BaseName is the reserved name of the reference image in a collection.
const BaseName = "Base"

var (
	// ErrTooManyColors is the reason a variant using more than the
	// permitted number of colors is skipped.
	ErrTooManyColors = errors.New("too many colors")
	// ErrBaseUnavailable is the reason variants fail when the collection
	// has a base image that could not be loaded or normalized.
	ErrBaseUnavailable = errors.New("base image unavailable")
	// ErrDuplicateName is returned when two images in a collection end up
	// with the same name.
	ErrDuplicateName = errors.New("duplicate image name")
)

var nonWord = regexp.MustCompile(`\W+`)

// SanitizeName replaces every run of characters other than letters, digits
// and underscores with a single underscore.
func SanitizeName(name string) string {
	return nonWord.ReplaceAllString(name, "_")
}

// Collection is a named set of indexed images, optionally including a base.
type Collection struct {
	Name string

	images map[string]*image.Paletted
	errs   map[string]error
}

// NewCollection returns an empty collection.
func NewCollection(name string) *Collection {
	return &Collection{
		Name:   name,
		images: make(map[string]*image.Paletted),
		errs:   make(map[string]error),
	}
}

func (c *Collection) exists(name string) bool {
	_, ok := c.images[name]
	_, failed := c.errs[name]
	return ok || failed
}

// Add adds the image m under name, indexing it first if it is not already
// paletted.
func (c *Collection) Add(name string, m image.Image) error {
	if c.exists(name) {
		return errors.Wrap(ErrDuplicateName, name)
	}
	pm, err := indexed.FromImage(m)
	if err != nil {
		c.errs[name] = err
		return err
	}
	c.images[name] = pm
	return nil
}

// Fail records that the named image could not be loaded. It is reported as
// failed when the collection is processed.
func (c *Collection) Fail(name string, err error) {
	if _, ok := c.errs[name]; !ok {
		c.errs[name] = err
	}
}

// Len returns the number of images in the collection, including failed
// ones.
func (c *Collection) Len() int {
	return len(c.images) + len(c.errs)
}

// Image returns the named image.
func (c *Collection) Image(name string) (*image.Paletted, bool) {
	m, ok := c.images[name]
	return m, ok
}

// HasBase reports whether the collection includes a base image, loaded or
// not.
func (c *Collection) HasBase() bool {
	return c.exists(BaseName)
}

// Variants returns the names of every image other than the base in sorted
// order.
func (c *Collection) Variants() []string {
	names := make([]string, 0, c.Len())
	for name := range c.images {
		if name != BaseName {
			names = append(names, name)
		}
	}
	for name := range c.errs {
		if _, ok := c.images[name]; !ok && name != BaseName {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

type base struct {
	src  *image.Paletted
	m    *image.Paletted
	used []uint8
	im   IndexMap
}

func (n *Normalizer) result(c *Collection, name string, status Status, err error, artifacts ...string) Result {
	switch status {
	case Skipped:
		n.logger.Printf("Warning: %s skipped: %v\n", itemName(c.Name, name), err)
	case Failed:
		n.logger.Printf("Error: %s failed: %v\n", itemName(c.Name, name), err)
	}
	return Result{
		Collection: c.Name,
		Name:       name,
		Status:     status,
		Err:        err,
		Artifacts:  artifacts,
	}
}

func (n *Normalizer) processBase(c *Collection, sink Sink) (*base, Result) {
	if err, ok := c.errs[BaseName]; ok {
		return nil, n.result(c, BaseName, Failed, err)
	}

	b := &base{src: c.images[BaseName], m: c.images[BaseName]}
	if n.opts.Resample {
		m, err := geometry.Normalize(b.src)
		if err != nil {
			return nil, n.result(c, BaseName, Failed, err)
		}
		b.m = m
	}
	b.used = indexed.UsedColors(b.m)
	b.im = NewIndexMap(b.used)

	name := paletteName(BaseName, true)
	if err := writePalette(sink, name, indexed.Colors(b.m.Palette, b.used)); err != nil {
		return nil, n.result(c, BaseName, Failed, err)
	}
	return b, n.result(c, BaseName, Processed, nil, name)
}

func (n *Normalizer) processVariant(c *Collection, name string, b *base, sink Sink, previews map[string]Preview) Result {
	if err, ok := c.errs[name]; ok {
		return n.result(c, name, Failed, err)
	}
	if c.HasBase() && b == nil {
		return n.result(c, name, Failed, ErrBaseUnavailable)
	}

	m := c.images[name]
	if n.opts.Resample {
		var err error
		if b != nil {
			m, err = geometry.Fit(b.src, m)
		} else {
			m, err = geometry.Normalize(m)
		}
		if err != nil {
			return n.result(c, name, Failed, err)
		}
	}

	used := indexed.UsedColors(m)
	if len(used) > n.opts.MaxColors {
		return n.result(c, name, Skipped, errors.Wrapf(ErrTooManyColors, "uses %d colors, more than %d", len(used), n.opts.MaxColors))
	}

	hasBase := b != nil
	grid, display := m, m.Palette
	palette := VariantPalette(m, used)
	if hasBase {
		grid = b.im.Remap(m)
		if n.opts.ReorderPalette {
			palette = b.im.Palette(m.Palette, used)
			display = palette
		}
	}

	var artifacts []string

	palName := paletteName(name, hasBase)
	if err := writePalette(sink, palName, palette); err != nil {
		return n.result(c, name, Failed, err)
	}
	artifacts = append(artifacts, palName)

	gridName := n.gridName(name, hasBase)
	if err := n.writeGrid(sink, gridName, grid, display); err != nil {
		return n.result(c, name, Failed, err, artifacts...)
	}
	artifacts = append(artifacts, gridName)

	if previews != nil {
		previews[gridName] = newPreview(grid, display)
	}

	return n.result(c, name, Processed, nil, artifacts...)
}

// ProcessCollection writes the palette and grid artifacts for every image in
// c to sink. Problems with one image never stop the others, the outcome for
// each image is in the returned report.
func (n *Normalizer) ProcessCollection(c *Collection, sink Sink) *Report {
	r := new(Report)

	var b *base
	if c.HasBase() {
		var res Result
		b, res = n.processBase(c, sink)
		r.add(res)
	}

	var previews map[string]Preview
	if n.opts.Preview {
		previews = make(map[string]Preview)
	}

	for _, name := range c.Variants() {
		r.add(n.processVariant(c, name, b, sink, previews))
	}

	if previews != nil {
		if err := writePreview(sink, previews); err != nil {
			n.logger.Printf("Error: %s: %v\n", itemName(c.Name, PreviewFilename), err)
		}
	}

	return r
}
