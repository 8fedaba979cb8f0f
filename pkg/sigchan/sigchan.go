package sigchan

// Chan 合并式通知：多次 Emit 在被消费前只保留一次，不传递数据。
// 用于“配置变了，尽快重新计算一次”这类场景。
type Chan struct {
	c chan struct{}
}

// New 创建通知 channel
func New() *Chan {
	return &Chan{c: make(chan struct{}, 1)}
}

// Emit 发送通知（非阻塞），已有未消费的通知时直接丢弃
func (c *Chan) Emit() {
	select {
	case c.c <- struct{}{}:
	default:
	}
}

// C 用于 select
func (c *Chan) C() <-chan struct{} {
	return c.c
}
