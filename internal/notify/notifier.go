package notify

import (
	"context"
	"cvewatch/internal/models"
	"cvewatch/internal/providers"
	"cvewatch/internal/structures"
	"sync"
)

// Delivery is the outcome for one digest. Err is a *models.DeliveryError.
type Delivery struct {
	Digest models.Digest
	Err    error
}

// Notifier renders and sends digests. Each recipient succeeds or fails on its own.
type Notifier struct {
	renderer    Renderer
	sender      Sender
	logger      providers.Logger
	metrics     providers.MetricsProviderInterface
	concurrency int
}

func NewNotifier(conf *structures.Config, renderer Renderer, sender Sender, logger providers.Logger, metrics providers.MetricsProviderInterface) *Notifier {
	concurrency := conf.Mail.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Notifier{
		renderer:    renderer,
		sender:      sender,
		logger:      logger,
		metrics:     metrics,
		concurrency: concurrency,
	}
}

// Deliver returns one Delivery per digest, in digest order.
func (n *Notifier) Deliver(ctx context.Context, digests []models.Digest) []Delivery {
	out := make([]Delivery, len(digests))
	sem := make(chan struct{}, n.concurrency)
	var wg sync.WaitGroup

	for i, d := range digests {
		wg.Add(1)
		go func(i int, d models.Digest) {
			defer wg.Done()
			out[i] = Delivery{Digest: d}
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				out[i].Err = &models.DeliveryError{Recipient: d.Recipient, Err: ctx.Err()}
				return
			}
			if err := n.deliver(ctx, d); err != nil {
				out[i].Err = &models.DeliveryError{Recipient: d.Recipient, Err: err}
			}
		}(i, d)
	}
	wg.Wait()

	for _, d := range out {
		if d.Err != nil {
			n.metrics.IncMails("failed")
			n.logger.Errorf(providers.TypeMail, "%v", d.Err)
			continue
		}
		n.metrics.IncMails("sent")
		n.logger.Infof(providers.TypeMail, "Sent %q to %s", Subject(d.Digest), d.Digest.Recipient)
	}
	return out
}

func (n *Notifier) deliver(ctx context.Context, d models.Digest) error {
	msg, err := n.renderer.Render(d)
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, msg)
}
