package music

import "sync"

// State 是管理器状态的只读快照，供展示层渲染。
type State struct {
	Songs         []Song       `json:"songs"`
	Loading       bool         `json:"loading"`
	CurrentSource SourceMode   `json:"currentSource"`
	MetingConfig  RemoteConfig `json:"metingConfig"`
	PlaylistID    string       `json:"playlistId"`
	Platform      string       `json:"platform"`
}

// broadcaster 把状态快照推送给订阅者。
// 每个订阅通道缓冲 1 个快照，消费慢的订阅者只会看到最新状态。
type broadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan State
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[int]chan State)}
}

func (b *broadcaster) subscribe() (int, <-chan State) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	ch := make(chan State, 1)
	b.subs[id] = ch
	return id, ch
}

func (b *broadcaster) unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// publish 在持锁状态下取快照，保证订阅者收到的快照顺序与状态变更顺序一致。
func (b *broadcaster) publish(snapshot func() State) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.subs) == 0 {
		return
	}
	st := snapshot()
	for _, ch := range b.subs {
		// 丢弃未被消费的旧快照
		select {
		case <-ch:
		default:
		}
		ch <- st
	}
}

func (b *broadcaster) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}
