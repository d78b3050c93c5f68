package middleware

import tele "gopkg.in/telebot.v4"

// AdminOptions defines how admin-only checks should behave.
type AdminOptions struct {
	UserIDs  []int64
	OnReject tele.HandlerFunc
}

func (o AdminOptions) allowed(id int64) bool {
	for _, admin := range o.UserIDs {
		if admin == id {
			return true
		}
	}
	return false
}

// AdminOnlyMiddleware ensures that only configured admin users can invoke
// downstream handlers.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if len(opts.UserIDs) == 0 {
				return next(c)
			}
			sender := c.Sender()
			if sender == nil || !opts.allowed(sender.ID) {
				if opts.OnReject != nil {
					return opts.OnReject(c)
				}
				return nil
			}
			return next(c)
		}
	}
}
