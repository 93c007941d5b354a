// Package poolmeta derives worker-pool sizing from the connection pool the
// SQL source sits on. Recognition is by concrete type name, not identity:
// each supported pool product is read through its own small facet interface,
// so callers can hand in whatever pool object they have without this package
// importing any pool product.
package poolmeta

import (
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Meta is the triple of interest: how many workers to run, how long a
// worker thread may idle, and how long an acquire may wait. The latter two
// are normalized to time.Duration regardless of the pool's native unit.
type Meta struct {
	Size           int
	IdleTimeout    time.Duration
	AcquireTimeout time.Duration
}

// UnknownPoolError is returned for pool objects no probe recognizes.
type UnknownPoolError struct {
	TypeName string
}

func (T *UnknownPoolError) Error() string {
	return fmt.Sprintf("unknown connection pool type %q", T.TypeName)
}

type probe struct {
	suffixes []string
	describe func(pool any) (Meta, bool)
}

var probes = []probe{
	{
		suffixes: []string{"HikariDataSource", "HikariUrlDataSource"},
		describe: describeHikari,
	},
	{
		suffixes: []string{"BasicDataSource", "DatasourceConfiguration"},
		describe: describeDBCP,
	},
	{
		suffixes: []string{"TomcatDataSource", "tomcat.DataSource"},
		describe: describeTomcat,
	},
	{
		suffixes: []string{"PoolDataSource"},
		describe: describeUCP,
	},
	{
		suffixes: []string{"TransactionAwareDataSourceProxy"},
		describe: describeProxy,
	},
}

// Describe maps pool to its Meta. It fails with *UnknownPoolError when the
// pool's type name matches no probe, or when the matching probe's facet is
// not implemented.
func Describe(pool any) (Meta, error) {
	name := typeName(pool)
	for _, p := range probes {
		for _, suffix := range p.suffixes {
			if !strings.HasSuffix(name, suffix) {
				continue
			}
			if meta, ok := p.describe(pool); ok {
				return meta, nil
			}
		}
	}
	return Meta{}, &UnknownPoolError{TypeName: name}
}

func typeName(pool any) string {
	t := reflect.TypeOf(pool)
	if t == nil {
		return "<nil>"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.String()
}
