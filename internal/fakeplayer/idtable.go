package fakeplayer

import (
	"sync"
	"weak"
)

// IDTable 会话对象到 ID 的覆盖表，只持有弱引用
type IDTable[T any] struct {
	mu  sync.RWMutex
	ids map[weak.Pointer[T]]int
}

// NewIDTable 创建覆盖表
func NewIDTable[T any]() *IDTable[T] {
	return &IDTable[T]{ids: make(map[weak.Pointer[T]]int)}
}

// Set 设置 p 的 ID，必须在第一次读取前调用
func (t *IDTable[T]) Set(p *T, id int) {
	if p == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.ids[weak.Make(p)] = id
}

// Lookup 查询 p 的 ID，不存在时 ok 为 false
func (t *IDTable[T]) Lookup(p *T) (id int, ok bool) {
	if p == nil {
		return 0, false
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok = t.ids[weak.Make(p)]
	return id, ok
}

// Delete 删除 p 的 ID，返回是否存在
func (t *IDTable[T]) Delete(p *T) bool {
	if p == nil {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	key := weak.Make(p)
	if _, ok := t.ids[key]; !ok {
		return false
	}
	delete(t.ids, key)
	return true
}

// Len 条目数量
func (t *IDTable[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.ids)
}

// Prune 清理对象已被回收的条目
func (t *IDTable[T]) Prune() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for key := range t.ids {
		if key.Value() == nil {
			delete(t.ids, key)
			n++
		}
	}
	return n
}
