package hcl_adapter

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/vk/sosgridgo/internal/ctxlog"
)

// presentExpr returns expr when the attribute was written in the source, and
// nil otherwise. gohcl fills an omitted optional hcl.Expression field with a
// zero-width placeholder rather than nil, so only the byte range tells them
// apart.
func presentExpr(ctx context.Context, expr hcl.Expression, owner, attr string) hcl.Expression {
	if expr == nil {
		return nil
	}
	rng := expr.Range()
	if rng.End.Byte <= rng.Start.Byte {
		return nil
	}
	ctxlog.FromContext(ctx).Debug("Found optional attribute.", "owner", owner, "attribute", attr, "range", rng.String())
	return expr
}
