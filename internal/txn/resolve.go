package txn

import (
	"context"
	"fmt"

	"lendingScope/internal/sui"
)

// ObjectGetter fetches object metadata from a node.
type ObjectGetter interface {
	GetObject(ctx context.Context, id string, opts sui.ObjectDataOptions) (*sui.ObjectResponse, error)
}

// ResolveSharedObjects looks up the initial shared version of every shared
// object input that does not have one yet.
func ResolveSharedObjects(ctx context.Context, getter ObjectGetter, req *Request) error {
	for _, input := range req.Inputs {
		if input.Kind != InputSharedObject || input.InitialSharedVersion != 0 {
			continue
		}
		id, err := sui.ParseAddress(input.ObjectID)
		if err != nil {
			return err
		}
		obj, err := getter.GetObject(ctx, input.ObjectID, sui.ObjectDataOptions{ShowOwner: true})
		if err != nil {
			return fmt.Errorf("resolve %s: %w", input.ObjectID, err)
		}
		if obj.Error != nil {
			return fmt.Errorf("resolve %s: %w", input.ObjectID, obj.Error)
		}
		if obj.Data == nil || obj.Data.Owner == nil || obj.Data.Owner.Shared == nil {
			return fmt.Errorf("resolve %s: not a shared object", input.ObjectID)
		}
		req.ResolveShared(id, uint64(obj.Data.Owner.Shared.InitialSharedVersion))
	}
	return nil
}
