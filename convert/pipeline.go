package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/bodgit/blp/catalog"
)

// Stats counts the outcome of a Scan.
type Stats struct {
	Converted int64
	Unchanged int64
	Failed    int64
}

type counters struct {
	converted, unchanged, failed atomic.Int64
}

func (c *Converter) findTextures(ctx context.Context, base string) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
			if info.Name()[0] == '.' && file != base {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			// Ignore anything that isn't a normal file
			if !info.Mode().IsRegular() || !isTexture(file) {
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

// unchanged reports whether the catalog already holds a clean entry for
// path with the same content and the output is still there.
func (c *Converter) unchanged(path, sum, output string) (bool, error) {
	if c.db == nil {
		return false, nil
	}

	entry, err := c.db.Get(path)
	if err != nil || entry == nil {
		return false, err
	}
	if entry.SHA1 != sum || entry.Err != "" {
		return false, nil
	}

	if _, err := os.Stat(output); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (c *Converter) scanFile(base, output, file string, n *counters) error {
	rel, err := filepath.Rel(base, file)
	if err != nil {
		return err
	}
	dst := filepath.Join(output, trimTexture(rel)+c.opts.Format.Ext())
	path := catalogPath(file)

	src, sum, err := open(file)
	if err != nil {
		c.logger.Printf("Unable to read \"%s\": %v\n", file, err)
		n.failed.Add(1)
		return c.record(&catalog.Entry{Path: path, Err: err.Error()})
	}

	ok, err := c.unchanged(path, sum, dst)
	if err != nil || ok {
		src.Close()
		if ok {
			c.logger.Printf("Skipping unchanged \"%s\"\n", file)
			n.unchanged.Add(1)
		}
		return err
	}

	entry, m, err := c.decode(path, sum, src)
	if err != nil {
		c.logger.Printf("Unable to decode \"%s\": %v\n", file, err)
		n.failed.Add(1)
		return c.record(entry)
	}

	if err := c.write(dst, m); err != nil {
		return err
	}
	c.logger.Printf("Converted \"%s\" to \"%s\"\n", file, dst)
	n.converted.Add(1)

	return c.record(entry)
}

func (c *Converter) textureWorker(ctx context.Context, base, output string, in <-chan string, n *counters) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for file := range in {
			if ctx.Err() != nil {
				return
			}
			if err := c.scanFile(base, output, file, n); err != nil {
				errc <- err
				return
			}
		}
	}()
	return errc, nil
}

// waitForPipeline returns the first error from any stage. It calls cancel
// as soon as that error arrives and then waits for every stage to finish so
// nothing is still running when it returns.
func waitForPipeline(cancel context.CancelFunc, errs ...<-chan error) error {
	var first error
	for err := range mergeErrors(errs...) {
		if err != nil && first == nil {
			first = err
			cancel()
		}
	}
	return first
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

// Scan converts every BLP texture found beneath path, writing images into
// the same relative location under output. Textures that cannot be decoded
// are logged, recorded and skipped; only errors writing output stop the
// scan.
func (c *Converter) Scan(path, output string) (Stats, error) {
	dir, err := filepath.Abs(path)
	if err != nil {
		return Stats{}, err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var (
		n        counters
		errcList []<-chan error
	)

	files, errc, err := c.findTextures(ctx, dir)
	if err != nil {
		return Stats{}, err
	}
	errcList = append(errcList, errc)

	workers := c.opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	for i := 0; i < workers; i++ {
		errc, err := c.textureWorker(ctx, dir, output, files, &n)
		if err != nil {
			return Stats{}, err
		}
		errcList = append(errcList, errc)
	}

	err = waitForPipeline(cancelFunc, errcList...)

	stats := Stats{
		Converted: n.converted.Load(),
		Unchanged: n.unchanged.Load(),
		Failed:    n.failed.Load(),
	}
	c.logger.Printf("Converted %d, unchanged %d, failed %d\n", stats.Converted, stats.Unchanged, stats.Failed)

	return stats, err
}
