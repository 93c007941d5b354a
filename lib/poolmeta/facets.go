package poolmeta

import "time"

// The facets below mirror the accessors of each recognized pool product, in
// that product's native units. A pool object only needs to satisfy the facet
// its type name selects.

type HikariFacet interface {
	MaximumPoolSize() int
	IdleTimeoutMillis() int64
	ConnectionTimeoutMillis() int64
}

type DBCPFacet interface {
	MaxTotal() int
	SoftMinEvictableIdleTimeMillis() int64
	ValidationQueryTimeoutMillis() int64
}

type TomcatFacet interface {
	MaxActive() int
	MinEvictableIdleTimeMillis() int64
	ValidationQueryTimeoutMillis() int64
}

type UCPFacet interface {
	MaxPoolSize() int
	InactiveConnectionTimeoutSeconds() int
	ConnectionWaitTimeoutSeconds() int
}

// ProxyFacet covers transaction-aware proxies that hide the real pool. Only
// the login timeout is observable; size and idle timeout fall back to fixed
// values.
type ProxyFacet interface {
	LoginTimeoutSeconds() int
}

const (
	proxyFallbackSize        = 10
	proxyFallbackIdleTimeout = 30 * time.Second
)

func describeHikari(pool any) (Meta, bool) {
	f, ok := pool.(HikariFacet)
	if !ok {
		return Meta{}, false
	}
	return Meta{
		Size:           f.MaximumPoolSize(),
		IdleTimeout:    time.Duration(f.IdleTimeoutMillis()) * time.Millisecond,
		AcquireTimeout: time.Duration(f.ConnectionTimeoutMillis()) * time.Millisecond,
	}, true
}

func describeDBCP(pool any) (Meta, bool) {
	f, ok := pool.(DBCPFacet)
	if !ok {
		return Meta{}, false
	}
	return Meta{
		Size:           f.MaxTotal(),
		IdleTimeout:    time.Duration(f.SoftMinEvictableIdleTimeMillis()) * time.Millisecond,
		AcquireTimeout: time.Duration(f.ValidationQueryTimeoutMillis()) * time.Millisecond,
	}, true
}

func describeTomcat(pool any) (Meta, bool) {
	f, ok := pool.(TomcatFacet)
	if !ok {
		return Meta{}, false
	}
	return Meta{
		Size:           f.MaxActive(),
		IdleTimeout:    time.Duration(f.MinEvictableIdleTimeMillis()) * time.Millisecond,
		AcquireTimeout: time.Duration(f.ValidationQueryTimeoutMillis()) * time.Millisecond,
	}, true
}

func describeUCP(pool any) (Meta, bool) {
	f, ok := pool.(UCPFacet)
	if !ok {
		return Meta{}, false
	}
	return Meta{
		Size:           f.MaxPoolSize(),
		IdleTimeout:    time.Duration(f.InactiveConnectionTimeoutSeconds()) * time.Second,
		AcquireTimeout: time.Duration(f.ConnectionWaitTimeoutSeconds()) * time.Second,
	}, true
}

func describeProxy(pool any) (Meta, bool) {
	f, ok := pool.(ProxyFacet)
	if !ok {
		return Meta{}, false
	}
	return Meta{
		Size:           proxyFallbackSize,
		IdleTimeout:    proxyFallbackIdleTimeout,
		AcquireTimeout: time.Duration(f.LoginTimeoutSeconds()) * time.Second,
	}, true
}
