package publish

import (
	"context"
	"sync"
)

// PublishToAll fans the content out to every publisher concurrently and
// waits for all attempts. Each publisher receives content optimized for its
// platform. One failing platform never affects the others; its failure is
// captured in the corresponding Result. Results come back in publisher order.
func PublishToAll(ctx context.Context, publishers []Publisher, content Content) []Result {
	results := make([]Result, len(publishers))

	var wg sync.WaitGroup
	for i, pub := range publishers {
		wg.Add(1)
		go func(i int, pub Publisher) {
			defer wg.Done()

			bundle := Optimize(content, pub.Platform())
			post, err := pub.Publish(ctx, bundle)
			results[i] = Result{
				Platform: pub.Platform(),
				PostID:   post.PostID,
				PostURL:  post.PostURL,
				Err:      err,
			}
		}(i, pub)
	}
	wg.Wait()
	return results
}
