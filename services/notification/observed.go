package notification

import "context"

// ObservedMailer reports the outcome of every send to Observe.
type ObservedMailer struct {
	Mailer  Mailer
	Observe func(err error)
}

func (o ObservedMailer) Send(ctx context.Context, email Email) (SendResult, error) {
	res, err := o.Mailer.Send(ctx, email)
	if o.Observe != nil {
		o.Observe(err)
	}
	return res, err
}
