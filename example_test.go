package tagcache_test

import (
	"context"
	"fmt"
	"time"

	"github.com/unkn0wn-root/tagcache"
	"github.com/unkn0wn-root/tagcache/codec"
	"github.com/unkn0wn-root/tagcache/memstore"
)

type profile struct {
	Name string `json:"name"`
	Tier string `json:"tier"`
}

func Example() {
	ctx := context.Background()

	cache, err := tagcache.New(tagcache.Options[profile]{
		Namespace: "user",
		Remote:    memstore.New(),
		Codec:     codec.JSON[profile]{},
	})
	if err != nil {
		fmt.Println("new:", err)
		return
	}
	defer cache.Close(ctx)

	tags := []string{"news", "sports"}
	if err := cache.Set(ctx, "u-42", profile{Name: "ada", Tier: "gold"}, tags, time.Hour); err != nil {
		fmt.Println("set:", err)
		return
	}

	if p, ok, _ := cache.Get(ctx, "u-42", tags); ok {
		fmt.Println("before:", p.Name, p.Tier)
	}

	// Bumping one of the tags orphans every entry stored under it.
	if err := cache.ClearTags(ctx, []string{"sports"}, false); err != nil {
		fmt.Println("clear:", err)
		return
	}

	if _, ok, _ := cache.Get(ctx, "u-42", tags); !ok {
		fmt.Println("after: miss")
	}

	// Output:
	// before: ada gold
	// after: miss
}

func Example_remember() {
	ctx := context.Background()

	cache, err := tagcache.New(tagcache.Options[string]{
		Namespace: "report",
		Remote:    memstore.New(),
		Codec:     codec.String{},
	})
	if err != nil {
		fmt.Println("new:", err)
		return
	}
	defer cache.Close(ctx)

	loads := 0
	monthly := func(ctx context.Context) (string, error) {
		loads++
		return "q3-summary", nil
	}

	for i := 0; i < 3; i++ {
		v, err := cache.Remember(ctx, "monthly", nil, time.Minute, monthly)
		if err != nil {
			fmt.Println("remember:", err)
			return
		}
		fmt.Println(v)
	}
	fmt.Println("loads:", loads)

	// Output:
	// q3-summary
	// q3-summary
	// q3-summary
	// loads: 1
}
