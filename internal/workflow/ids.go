package workflow

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"millflow/internal/models"
)

// idGen hands out strictly increasing millisecond stamps so timestamp ids
// never repeat within a process.
type idGen struct {
	mu   sync.Mutex
	last int64
}

func (g *idGen) next(now time.Time) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	ms := now.UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return ms
}

// stampID returns prefix-<ms>.
func (g *idGen) stampID(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%d", prefix, g.next(now))
}

// suffixID returns prefix-<last six digits of ms>.
func (g *idGen) suffixID(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%06d", prefix, g.next(now)%1000000)
}

// nextWorkOrderID returns WO-YYMM-NNNN, one past the highest number already
// used in that month.
func nextWorkOrderID(existing []models.WorkOrder, now time.Time) string {
	prefix := "WO-" + now.Format("0601") + "-"
	max := 0
	for _, wo := range existing {
		if !strings.HasPrefix(wo.ID, prefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(wo.ID, prefix))
		if err == nil && n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s%04d", prefix, max+1)
}
