package community

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Comment is one reply on a post. The author handle is a randomly assigned
// user_NNN pseudonym, not a real identity.
type Comment struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	Comments  []Comment `json:"comments"`
	CreatedAt time.Time `json:"created_at"`
}

// Board is the in-memory discussion board. All posts and comments are
// transient process state: nothing is written to disk.
type Board struct {
	mu    sync.RWMutex
	posts map[string]*Post
}

func NewBoard() *Board {
	return &Board{
		posts: make(map[string]*Post),
	}
}

func randomHandle() string {
	return fmt.Sprintf("user_%d", 100+rand.Intn(900))
}

// copyPost snapshots a post, comments included, so callers can read and
// encode it without holding the board's lock.
func copyPost(post *Post) *Post {
	snapshot := *post
	snapshot.Comments = make([]Comment, len(post.Comments))
	copy(snapshot.Comments, post.Comments)
	return &snapshot
}

func (b *Board) CreatePost(title, content string) (*Post, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("title and content are required")
	}

	post := &Post{
		ID:        uuid.New().String(),
		Title:     title,
		Content:   content,
		Author:    randomHandle(),
		Comments:  []Comment{},
		CreatedAt: time.Now(),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.posts[post.ID] = post
	return copyPost(post), nil
}

func (b *Board) GetPost(postID string) (*Post, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	post, ok := b.posts[postID]
	if !ok {
		return nil, false
	}
	return copyPost(post), true
}

// SearchPosts returns the posts whose title or content contains query,
// case-insensitively, newest first. An empty query matches every post.
func (b *Board) SearchPosts(query string) []*Post {
	query = strings.ToLower(strings.TrimSpace(query))

	b.mu.RLock()
	defer b.mu.RUnlock()

	var results []*Post
	for _, post := range b.posts {
		if query == "" ||
			strings.Contains(strings.ToLower(post.Title), query) ||
			strings.Contains(strings.ToLower(post.Content), query) {
			results = append(results, copyPost(post))
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})

	return results
}

func (b *Board) AddComment(postID, content string) (*Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("comment content is required")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	post, ok := b.posts[postID]
	if !ok {
		return nil, fmt.Errorf("post not found: %s", postID)
	}

	comment := Comment{
		ID:        uuid.New().String(),
		Author:    randomHandle(),
		Content:   content,
		CreatedAt: time.Now(),
	}
	post.Comments = append(post.Comments, comment)
	return &comment, nil
}
