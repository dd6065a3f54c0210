package palnorm

import "fmt"

// Status is the outcome of processing a single image.
type Status int

const (
	// Processed means every artifact for the image was written.
	Processed Status = iota
	// Skipped means the image was passed over, for example for using too
	// many colors.
	Skipped
	// Failed means processing stopped with an error.
	Failed
)

func (s Status) String() string {
	switch s {
	case Processed:
		return "processed"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result records what happened to one image of a collection.
type Result struct {
	Collection string
	Name       string
	Status     Status
	Err        error
	Artifacts  []string
}

func (r Result) String() string {
	s := fmt.Sprintf("%s: %s", itemName(r.Collection, r.Name), r.Status)
	if r.Err != nil {
		s += ": " + r.Err.Error()
	}
	return s
}

// Report collects the results of a batch.
type Report struct {
	Results []Result
}

func (r *Report) add(res Result) {
	r.Results = append(r.Results, res)
}

// Merge appends the results of o.
func (r *Report) Merge(o *Report) {
	if o == nil {
		return
	}
	r.Results = append(r.Results, o.Results...)
}

// Count returns the number of results with status s.
func (r *Report) Count(s Status) int {
	var n int
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

// Find returns the result for the named image in the given collection.
func (r *Report) Find(collection, name string) (Result, bool) {
	for _, res := range r.Results {
		if res.Collection == collection && res.Name == name {
			return res, true
		}
	}
	return Result{}, false
}

func itemName(collection, name string) string {
	if collection == "" || collection == "." {
		return name
	}
	return collection + "/" + name
}
