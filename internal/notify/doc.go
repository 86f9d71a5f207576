// Package notify tells external services that an alarm played.
//
// Messages go through shoutrrr, so any service it supports (Telegram,
// Discord, ntfy, e-mail, ...) can be targeted by listing its URL in the
// notify_urls setting. Delivery is best effort: failures are logged and never
// reach the scheduler.
package notify
