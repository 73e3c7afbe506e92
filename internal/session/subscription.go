package session

// Handler receives messages for a subscription. Skills implement it.
type Handler interface {
	OnMessage(topic, payload string) error
}

// Subscription binds a request topic to the skill that owns it.
//
// Identity is by pointer: two subscriptions on the same topic are distinct
// and both receive every matching message.
//
// The owner is held strongly. A session keeps it reachable only while the
// subscription is registered; Unsubscribe (a skill's Detach on stop) drops
// the session's reference so a stopped skill can be collected.
type Subscription struct {
	topic string
	owner Handler
	last  string
}

// NewSubscription creates a subscription for topic delivering to owner.
func NewSubscription(topic string, owner Handler) *Subscription {
	return &Subscription{topic: topic, owner: owner}
}

// Topic returns the subscribed topic.
func (s *Subscription) Topic() string { return s.topic }

// LastPayload returns the most recent payload delivered.
func (s *Subscription) LastPayload() string { return s.last }

func (s *Subscription) deliver(topic, payload string) error {
	s.last = payload
	return s.owner.OnMessage(topic, payload)
}

// Publisher is anything a Publication can send through.
type Publisher interface {
	Publish(topic, payload string)
}

// Publication is a status topic plus the last payload sent on it.
type Publication struct {
	topic string
	last  string
	sent  bool
}

// NewPublication creates a publication for topic.
func NewPublication(topic string) *Publication {
	return &Publication{topic: topic}
}

// Topic returns the status topic.
func (p *Publication) Topic() string { return p.topic }

// Last returns the last payload sent and whether anything was sent yet.
func (p *Publication) Last() (string, bool) { return p.last, p.sent }

// Send publishes payload via pub and records it.
func (p *Publication) Send(pub Publisher, payload string) {
	p.last = payload
	p.sent = true
	pub.Publish(p.topic, payload)
}
