package testutil

import (
	"github.com/crimsonvanitas/brew/pkg/errors"
	"github.com/crimsonvanitas/brew/pkg/types"
)

// PatchCall records one FakeAccessor.Patch invocation.
type PatchCall struct {
	Path        string
	RPath       *string
	Interpreter *string
}

// FakeAccessor is an in-memory accessor. Patches are applied to Sections so
// a second pass observes the new values.
type FakeAccessor struct {
	Sections  map[string]*types.DynamicSection
	ReadErrs  map[string]error
	PatchErrs map[string]error

	Reads   int
	Patches []PatchCall
}

// NewFakeAccessor creates an empty FakeAccessor
func NewFakeAccessor() *FakeAccessor {
	return &FakeAccessor{
		Sections:  map[string]*types.DynamicSection{},
		ReadErrs:  map[string]error{},
		PatchErrs: map[string]error{},
	}
}

func (f *FakeAccessor) Read(path string) (*types.DynamicSection, error) {
	f.Reads++
	if err := f.ReadErrs[path]; err != nil {
		return nil, err
	}
	dyn, ok := f.Sections[path]
	if !ok {
		return nil, errors.Newf(errors.ErrUnreadableFile, "no such file %s", path)
	}
	cp := *dyn
	return &cp, nil
}

func (f *FakeAccessor) Patch(path string, rpath, interpreter *string) error {
	f.Patches = append(f.Patches, PatchCall{Path: path, RPath: rpath, Interpreter: interpreter})
	if err := f.PatchErrs[path]; err != nil {
		return err
	}
	dyn, ok := f.Sections[path]
	if !ok {
		return errors.Newf(errors.ErrUnreadableFile, "no such file %s", path)
	}
	if rpath != nil {
		v := *rpath
		if dyn.RunPath != nil {
			dyn.RunPath = &v
		} else {
			dyn.RPath = &v
		}
	}
	if interpreter != nil {
		v := *interpreter
		dyn.Interpreter = &v
	}
	return nil
}
