package transfer

import (
	"context"

	"github.com/peak/remotecp/storage"
	"github.com/peak/remotecp/storage/url"
)

// Pair is one planned file transfer.
type Pair struct {
	Src  string
	Dst  string
	Size int64
}

// Plan is the ordered list of pairs of a batch.
type Plan struct {
	Pairs []Pair
	// DirectoryTarget is set when the destination names a directory that
	// every source is put into.
	DirectoryTarget bool
}

// IsEmpty reports whether nothing is to be transferred.
func (p *Plan) IsEmpty() bool {
	return len(p.Pairs) == 0
}

// match lists the directory of src once and returns the files whose
// basename matches its mask, in listing order.
func match(ctx context.Context, client storage.Storage, src *url.URL) ([]*storage.Object, error) {
	objects, err := client.List(ctx, src.Dir)
	if err != nil {
		return nil, err
	}

	var matched []*storage.Object
	for _, obj := range objects {
		if obj.IsReserved() || obj.Type == storage.TypeOther {
			continue
		}
		if !src.Match(obj.Name) {
			continue
		}
		matched = append(matched, obj)
	}
	return matched, nil
}

// downloadPlan pairs matched remote files with their local destinations.
func downloadPlan(src *url.URL, objects []*storage.Object, localDir, extension string) *Plan {
	plan := &Plan{DirectoryTarget: true}
	for _, obj := range objects {
		plan.Pairs = append(plan.Pairs, Pair{
			Src:  src.Join(obj.Name),
			Dst:  localDestination(localDir, obj.Name, extension),
			Size: obj.Size,
		})
	}
	return plan
}

// uploadPlan pairs matched local files with their remote destinations.
func uploadPlan(src *url.URL, objects []*storage.Object, dst *url.URL) (*Plan, error) {
	plan := &Plan{DirectoryTarget: dst.IsDirectoryTarget()}
	if !plan.DirectoryTarget && len(objects) > 1 {
		return nil, ambiguousTargetError(src.String(), dst.String(), len(objects))
	}

	for _, obj := range objects {
		plan.Pairs = append(plan.Pairs, Pair{
			Src:  src.Join(obj.Name),
			Dst:  remoteDestination(dst, plan.DirectoryTarget, obj.Name),
			Size: obj.Size,
		})
	}
	return plan, nil
}
