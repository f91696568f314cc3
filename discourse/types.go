package discourse

// Category is one node of the forum's category tree.
type Category struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	ParentID *int   `json:"parent_category_id"`
}

// Post is the payload of /posts/{id}.json. The owning topic carries the
// category and title, so a post fetch is always paired with a topic fetch.
type Post struct {
	ID        int64  `json:"id"`
	TopicID   int64  `json:"topic_id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	Raw       string `json:"raw"`
	Cooked    string `json:"cooked"`
}

// Topic is the payload of /t/{id}.json, trimmed to what the pipeline needs.
type Topic struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	CategoryID int    `json:"category_id"`
}

type siteResponse struct {
	Categories []Category `json:"categories"`
}

type latestPostsResponse struct {
	LatestPosts []Post `json:"latest_posts"`
}
