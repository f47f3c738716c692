package common

// Defaults shared by the allocator, intake and console.
const (
	// TrackingCounterKey names the sequential tracking-id counter.
	TrackingCounterKey = "tracking_id"
	// TrackingBaseline is the counter floor; the first issued id is #244.
	TrackingBaseline = 243
	// RecentScanLimit bounds the derive-from-history scan.
	RecentScanLimit = 100
	// DefaultAuthor is used for comments posted without an author.
	DefaultAuthor = "Staff"
	// MailBucket is the object-storage namespace for attachments.
	MailBucket = "mail-files"
)
