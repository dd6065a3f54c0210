package palnorm

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

func containsImages(dir string) (bool, error) {
	d, err := os.Open(dir)
	if err != nil {
		return false, err
	}
	defer d.Close()

	info, err := d.Stat()
	if err != nil {
		return false, err
	}

	if !info.IsDir() {
		return false, errors.New("not a directory")
	}

	files, err := d.Readdirnames(0)
	if err != nil {
		return false, err
	}

	for _, file := range files {
		if file[0] != '.' && filepath.Ext(file) == imageExt {
			return true, nil
		}
	}

	return false, nil
}

func (n *Normalizer) findDirectories(ctx context.Context, base, skip string) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(dir string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
			if info.Name()[0] == '.' && dir != base {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			// Ignore anything that isn't a directory
			if !info.Mode().IsDir() {
				return nil
			}

			// Don't feed our own output back in
			if dir == skip {
				return filepath.SkipDir
			}

			select {
			case out <- dir:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

// Collections are processed one at a time, each to completion
func (n *Normalizer) directoryWorker(ctx context.Context, base, output string, in <-chan string, report *Report) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for dir := range in {
			ok, err := containsImages(dir)
			if err != nil {
				errc <- err
				return
			}
			if !ok {
				continue
			}

			rel, err := filepath.Rel(base, dir)
			if err != nil {
				errc <- err
				return
			}

			c, err := n.LoadDir(dir, filepath.ToSlash(rel))
			if err != nil {
				errc <- err
				return
			}

			report.Merge(n.ProcessCollection(c, DirSink(filepath.Join(output, rel))))
		}
	}()
	return errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Scan treats every directory under path holding .png files as a collection
// and writes its artifacts to the matching directory under output.
func (n *Normalizer) Scan(path, output string) (*Report, error) {
	dir, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	out, err := filepath.Abs(output)
	if err != nil {
		return nil, err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	dirs, errc, err := n.findDirectories(ctx, dir, out)
	if err != nil {
		return nil, err
	}
	errcList = append(errcList, errc)

	report := new(Report)

	errc, err = n.directoryWorker(ctx, dir, out, dirs, report)
	if err != nil {
		return nil, err
	}
	errcList = append(errcList, errc)

	if err := waitForPipeline(errcList...); err != nil {
		return nil, err
	}

	return report, nil
}

// ScanZip processes every collection in the ZIP archive at file, writing the
// artifacts of each to the matching directory under output.
func (n *Normalizer) ScanZip(file, output string) (*Report, error) {
	collections, err := n.LoadZip(file)
	if err != nil {
		return nil, err
	}

	report := new(Report)
	for _, c := range collections {
		report.Merge(n.ProcessCollection(c, DirSink(filepath.Join(output, filepath.FromSlash(c.Name)))))
	}
	return report, nil
}

// ProcessBundle processes the JSON bundle read from r as a single collection
// and writes its artifacts to sink.
func (n *Normalizer) ProcessBundle(r io.Reader, sink Sink) (*Report, error) {
	c, err := n.LoadBundle(r, "")
	if err != nil {
		return nil, err
	}
	return n.ProcessCollection(c, sink), nil
}
