package convert

import (
	"testing"
	"time"

	"github.com/haierkeys/map-annotation-sync-service/pkg/timex"

	"github.com/stretchr/testify/assert"
)

type assignSrc struct {
	Name      string
	Version   int64
	CreatedAt timex.Time
}

type assignDst struct {
	Name      string
	Version   int64
	CreatedAt time.Time
}

func TestStructAssignConvertsTimeFields(t *testing.T) {

	now := time.Date(2026, 8, 24, 12, 30, 0, 0, time.Local)
	src := &assignSrc{Name: "poi-layer", Version: 3, CreatedAt: timex.Time(now)}

	dst := StructAssign(src, &assignDst{}).(*assignDst)
	assert.Equal(t, "poi-layer", dst.Name)
	assert.Equal(t, int64(3), dst.Version)
	assert.Equal(t, now, dst.CreatedAt)

	// 反向：time.Time 字段回填 timex.Time
	back := StructAssign(dst, &assignSrc{}).(*assignSrc)
	assert.Equal(t, now, back.CreatedAt.Time())
}
