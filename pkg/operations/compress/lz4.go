package compress

import (
	"io"

	"github.com/pierrec/lz4/v4"
	"github.com/provide-io/jlaunch/pkg/operations"
)

func init() {
	operations.Register(NewLz4Operation())
}

// Lz4Operation implements LZ4 frame compression
type Lz4Operation struct {
	operations.BaseOperation
}

// NewLz4Operation creates a new LZ4 operation
func NewLz4Operation() *Lz4Operation {
	return &Lz4Operation{
		BaseOperation: operations.BaseOperation{
			OpID:   operations.OP_LZ4,
			OpName: "LZ4",
		},
	}
}

func (o *Lz4Operation) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return lz4.NewWriter(w), nil
}

func (o *Lz4Operation) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(lz4.NewReader(r)), nil
}
