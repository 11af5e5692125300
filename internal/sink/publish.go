package sink

// Publisher is the transport boundary the publish sink writes to. The
// implementation maps topics to its own naming convention and owns any
// internal queueing; Publish must not block the transcription loop beyond
// issuing the send.
type Publisher interface {
	Publish(topic, payload string) error
}

// Publish delivers results to two logical channels on a pub/sub transport:
// one topic for final results, one for partials.
type Publish struct {
	pub          Publisher
	finalTopic   string
	partialTopic string
}

func NewPublish(pub Publisher, finalTopic, partialTopic string) *Publish {
	return &Publish{
		pub:          pub,
		finalTopic:   finalTopic,
		partialTopic: partialTopic,
	}
}

func (p *Publish) Deliver(r Result) error {
	topic := p.partialTopic
	if r.Final {
		topic = p.finalTopic
	}
	return p.pub.Publish(topic, r.Text)
}

func (p *Publish) Close() error {
	return nil
}
