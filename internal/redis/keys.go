package redis

import "fmt"

const ns = "tourdesk:v1"

func KeyDraft(draftID string) string {
	return fmt.Sprintf("%s:draft:%s", ns, draftID)
}

func KeyCatalog() string {
	return ns + ":catalog"
}

func KeyGigDocuments(gigID string) string {
	return fmt.Sprintf("%s:gig:%s:documents", ns, gigID)
}

func KeyCalendar() string {
	return ns + ":calendar"
}

func KeyFinanceSummary() string {
	return ns + ":finance:summary"
}

func KeyRateLimit(scope string) string {
	return fmt.Sprintf("%s:rl:%s", ns, scope)
}

func KeyIdempotency(scope, idemKey string) string {
	return fmt.Sprintf("%s:idem:%s:%s", ns, scope, idemKey)
}

func ChannelDocumentsChanged() string {
	return ns + ":documents:changed"
}
