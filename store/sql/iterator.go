package sqlstore

import (
	"context"

	"github.com/mlow/low/core"
)

// sliceIter adapts an eagerly-fetched []*core.Package into the lazy,
// single-pass, forward-only core.PackageIter contract of spec.md §4.3/§9.
// Backends fetch eagerly (go-repository-bun's List has no server-side
// cursor), so "lazy" here means each Next call yields one already-fetched
// row rather than the whole slice at once, matching the teacher's
// in-process scan-then-filter approach to dependency predicates.
type sliceIter struct {
	pkgs []*core.Package
	idx  int
}

func newSliceIter(pkgs []*core.Package) *sliceIter {
	return &sliceIter{pkgs: pkgs}
}

func (it *sliceIter) Next(ctx context.Context) (*core.Package, bool, error) {
	if it == nil || it.idx >= len(it.pkgs) {
		return nil, false, nil
	}
	pkg := it.pkgs[it.idx]
	it.idx++
	return pkg, true, nil
}

func (it *sliceIter) Close() error {
	return nil
}

var _ core.PackageIter = (*sliceIter)(nil)
