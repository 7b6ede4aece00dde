package imdb

// Search results page. The current layout renders a results section of list
// items; the legacy layout renders a findList table.
const (
	SearchReady = "section[data-testid*='find-results-section-title'], table[class*='findList']"

	CurrentResultItem  = "section[data-testid*='find-results-section-title'] li.ipc-metadata-list-summary-item"
	CurrentResultTitle = "a.ipc-metadata-list-summary-item__t"
	CurrentResultType  = "[class*='ipc-metadata-list-summary-item__tl']"

	LegacyResultRow   = "table[class*='findList'] tr"
	LegacyResultTitle = "td.result_text > a"
	LegacyResultMeta  = "td.result_text"
)

// Title detail page.
const (
	DetailReady = "span[data-testid='hero__primary-text'], h1"

	CurrentRating      = "[data-testid='hero-rating-bar__aggregate-rating__score'] span"
	CurrentPopularity  = "[data-testid='hero-rating-bar__popularity__score']"
	CurrentMetascore   = "span[class*='metacritic-score-box']"
	CurrentGenres      = "[data-testid='genres'] span[class*='ipc-chip__text']"
	InterestGenres     = "[data-testid='interests'] span[class*='ipc-chip__text']"
	CurrentUserReviews = "a[href*='/reviews']:has(span:contains('User reviews')) span[class*='score']"

	LegacyRating      = "span[itemprop='ratingValue']"
	LegacyPopularity  = ".titleReviewBarItem:contains('Popularity') .subText"
	LegacyMetascore   = ".metacriticScore span"
	LegacyGenres      = ".subtext a[href*='genres']"
	LegacyUserReviews = "span[itemprop='reviewCount']"
)

// Reviews page.
const (
	ReviewsReady = "[data-testid='review-card-parent'], .review-container"

	CurrentReviewCard = "[data-testid='review-card-parent']"
	CurrentReviewBody = "div[class*='ipc-html-content-inner-div']"

	LegacyReviewCard = ".review-container"
	LegacyReviewBody = ".text"
)
