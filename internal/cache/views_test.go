package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	qt "github.com/frankban/quicktest"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/invoice-dashboard/internal/service"
)

func newTestViews(c *qt.C) (*Views, *miniredis.Miniredis) {
	mr := miniredis.RunT(c)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c.Cleanup(func() { _ = rdb.Close() })
	return NewViews(rdb, "view", time.Minute), mr
}

func TestTagKey(t *testing.T) {
	c := qt.New(t)
	c.Assert(TagKey("view", "/dashboard/invoices"), qt.Equals, "view:tag:/dashboard/invoices")
	c.Assert(GenKey("view", "/dashboard/invoices"), qt.Equals, "view:gen:/dashboard/invoices")
}

func TestDisabledViews(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()

	for _, v := range []*Views{nil, NewViews(nil, "view", 0)} {
		c.Assert(v.Enabled(), qt.IsFalse)
		_, ok := v.Get(ctx, "k")
		c.Assert(ok, qt.IsFalse)
		_, ok = v.Generation(ctx, "t")
		c.Assert(ok, qt.IsFalse)
		stored, err := v.Put(ctx, "t", "k", 0, []byte("x"))
		c.Assert(err, qt.IsNil)
		c.Assert(stored, qt.IsFalse)
		n, err := v.Drop(ctx, "t")
		c.Assert(err, qt.IsNil)
		c.Assert(n, qt.Equals, int64(0))
		c.Assert(v.Invalidate(ctx, service.ViewEvent{Path: service.InvoicesPath}), qt.IsNil)
	}
}

func TestDefaultTTL(t *testing.T) {
	c := qt.New(t)
	v := NewViews(nil, "view", 0)
	c.Assert(v.ttl > 0, qt.IsTrue)
	c.Assert(v.Prefix(), qt.Equals, "view")
}

func TestPutThenGet(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	v, mr := newTestViews(c)

	_, ok := v.Get(ctx, "view:page1")
	c.Assert(ok, qt.IsFalse)

	gen, ok := v.Generation(ctx, service.InvoicesPath)
	c.Assert(ok, qt.IsTrue)
	c.Assert(gen, qt.Equals, int64(0))

	stored, err := v.Put(ctx, service.InvoicesPath, "view:page1", gen, []byte("rendered"))
	c.Assert(err, qt.IsNil)
	c.Assert(stored, qt.IsTrue)

	got, ok := v.Get(ctx, "view:page1")
	c.Assert(ok, qt.IsTrue)
	c.Assert(string(got), qt.Equals, "rendered")
	c.Assert(mr.TTL("view:page1"), qt.Equals, time.Minute)

	members, err := mr.Members(TagKey("view", service.InvoicesPath))
	c.Assert(err, qt.IsNil)
	c.Assert(members, qt.DeepEquals, []string{"view:page1"})
}

func TestInvalidateDropsEveryVariant(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	v, mr := newTestViews(c)

	gen, ok := v.Generation(ctx, service.InvoicesPath)
	c.Assert(ok, qt.IsTrue)
	for _, key := range []string{"view:q=lee", "view:q=&page=2"} {
		stored, err := v.Put(ctx, service.InvoicesPath, key, gen, []byte(key))
		c.Assert(err, qt.IsNil)
		c.Assert(stored, qt.IsTrue)
	}
	// Views under another tag survive.
	stored, err := v.Put(ctx, "/dashboard/customers", "view:customers", 0, []byte("c"))
	c.Assert(err, qt.IsNil)
	c.Assert(stored, qt.IsTrue)

	err = v.Invalidate(ctx, service.ViewEvent{Path: service.InvoicesPath, Action: "created"})
	c.Assert(err, qt.IsNil)

	c.Assert(mr.Exists("view:q=lee"), qt.IsFalse)
	c.Assert(mr.Exists("view:q=&page=2"), qt.IsFalse)
	c.Assert(mr.Exists(TagKey("view", service.InvoicesPath)), qt.IsFalse)
	c.Assert(mr.Exists("view:customers"), qt.IsTrue)

	gen, ok = v.Generation(ctx, service.InvoicesPath)
	c.Assert(ok, qt.IsTrue)
	c.Assert(gen, qt.Equals, int64(1))
}

func TestPutAfterDropIsDiscarded(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()
	v, mr := newTestViews(c)

	// A render starts, then a mutation drops the tag before it is stored.
	gen, ok := v.Generation(ctx, service.InvoicesPath)
	c.Assert(ok, qt.IsTrue)
	n, err := v.Drop(ctx, service.InvoicesPath)
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, int64(0))

	stored, err := v.Put(ctx, service.InvoicesPath, "view:stale", gen, []byte("old page"))
	c.Assert(err, qt.IsNil)
	c.Assert(stored, qt.IsFalse)
	c.Assert(mr.Exists("view:stale"), qt.IsFalse)
	c.Assert(mr.Exists(TagKey("view", service.InvoicesPath)), qt.IsFalse)

	// A render started after the drop is stored.
	gen, _ = v.Generation(ctx, service.InvoicesPath)
	stored, err = v.Put(ctx, service.InvoicesPath, "view:fresh", gen, []byte("new page"))
	c.Assert(err, qt.IsNil)
	c.Assert(stored, qt.IsTrue)
}

func TestGenerationUnavailable(t *testing.T) {
	c := qt.New(t)
	v, mr := newTestViews(c)
	mr.SetError("LOADING server is loading")

	_, ok := v.Generation(context.Background(), service.InvoicesPath)
	c.Assert(ok, qt.IsFalse)
	_, ok = v.Get(context.Background(), "view:page1")
	c.Assert(ok, qt.IsFalse)
}
