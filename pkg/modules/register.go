package modules

import (
	"github.com/menta2k/image-pipeline/pkg/pipeline"
)

// RegisterBuiltins registers every builtin module with the registry.
func RegisterBuiltins(reg *pipeline.Registry) error {
	factories := []pipeline.Factory{
		func() pipeline.Module { return NewLoadSingleImage() },
		func() pipeline.Module { return NewLoadImages() },
		func() pipeline.Module { return NewSaveImages() },
		func() pipeline.Module { return NewCrop() },
		func() pipeline.Module { return NewResize() },
		func() pipeline.Module { return NewDescribeImage() },
	}
	for _, f := range factories {
		if err := reg.Register(f); err != nil {
			return err
		}
	}
	return nil
}
