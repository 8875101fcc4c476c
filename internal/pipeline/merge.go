package pipeline

import "github.com/webangle/teardown-cli/internal/model"

// MergeContacts combines contact data across pages. Pages are processed in
// order, so callers put the homepage first; emails and phones dedupe by exact
// match while social links from later pages overwrite earlier ones.
func MergeContacts(pages []model.PageData) model.ContactData {
	merged := model.ContactData{
		Emails:      []string{},
		Phones:      []string{},
		SocialLinks: map[string]string{},
	}

	seenEmails := map[string]bool{}
	seenPhones := map[string]bool{}

	for _, page := range pages {
		for _, e := range page.Contact.Emails {
			if !seenEmails[e] {
				seenEmails[e] = true
				merged.Emails = append(merged.Emails, e)
			}
		}
		for _, p := range page.Contact.Phones {
			if !seenPhones[p] {
				seenPhones[p] = true
				merged.Phones = append(merged.Phones, p)
			}
		}
		for platform, link := range page.Contact.SocialLinks {
			merged.SocialLinks[platform] = link
		}
	}
	return merged
}
