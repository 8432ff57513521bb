package catalog

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/ariefcatur/nava-store/internal/domain"
	"github.com/ariefcatur/nava-store/internal/store"
)

const (
	seedPrice = 10000
	seedStock = 10
)

type seedProduct struct {
	name, category, image string
	variants              []string
}

// Katalog awal toko. Harga & stok seragam, admin yang menyesuaikan.
var seedCatalog = []seedProduct{
	{"Netflix Premium", "Aplikasi Premium", "img/netflix.png", []string{"Private 1 Bulan", "Semi Private 1 Bulan", "Sharing 1 Bulan"}},
	{"CapCut Pro", "Aplikasi Premium", "img/capcut.png", []string{"1 Bulan", "6 Bulan"}},
	{"Prime Video", "Aplikasi Premium", "img/prime.png", []string{"Private 1 Bulan", "Semi Private 1 Bulan", "Sharing 1 Bulan"}},
	{"Canva Pro", "Aplikasi Premium", "img/canva.png", []string{"Private 1 Bulan", "Semi Private 1 Bulan", "Sharing 1 Bulan"}},
	{"Disney", "Aplikasi Premium", "img/disney.png", []string{"Private 1 Bulan", "Sharing 1 Bulan"}},
	{"Vidio", "Aplikasi Premium", "img/vidio.png", []string{"Private 1 Bulan", "Sharing 1 Bulan"}},
	{"Wetv", "Aplikasi Premium", "img/wetv.png", []string{"Private 1 Bulan", "Sharing 1 Bulan"}},
	{"Spotify", "Aplikasi Premium", "img/spotify.png", []string{"Private 1 Bulan", "Sharing 1 Bulan"}},
	{"YouTube", "Aplikasi Premium", "img/yt.png", []string{"Premium 1 Bulan"}},
	{"Zoom Pro", "Aplikasi Premium", "img/zoom.png", []string{"1 Bulan", "6 Bulan"}},
	{"Drama Box", "Aplikasi Premium", "img/drama.png", []string{"Private 1 Bulan"}},
	{"Gemini", "Aplikasi Premium", "img/gemini.png", []string{"Pro 1 Bulan"}},
	{"CHAT GPT", "Aplikasi Premium", "img/chatgpts.png", []string{"Plus 1 Bulan"}},
	{"Perplexity", "Aplikasi Premium", "img/perplexity.png", []string{"Pro 1 Bulan"}},
	{"GET CONTACT", "Aplikasi Premium", "img/gtc.png", []string{"Premium 1 Bulan"}},

	{"Diamond ML", "Game", "img/ml.png", []string{"Top Up 86 Diamond", "Top Up 172 Diamond"}},
	{"Diamond FF", "Game", "img/ff.png", []string{"Top Up 12 Diamond", "Top Up 50 Diamond"}},

	{"Pulsa Telkomsel", "Pulsa", "img/telkom.png", []string{"Pulsa 25K", "Pulsa 50K"}},
	{"Pulsa IM3", "Pulsa", "img/im3.png", []string{"Pulsa 25K", "Pulsa 50K"}},
	{"Pulsa AXIS", "Pulsa", "img/axis.png", []string{"Pulsa 25K", "Pulsa 50K"}},
	{"Pulsa XL", "Pulsa", "img/xl.png", []string{"Pulsa 25K", "Pulsa 50K"}},
	{"Pulsa By.U", "Pulsa", "img/byu.png", []string{"Pulsa 25K", "Pulsa 50K"}},

	{"Paket Data Telkomsel", "Paket Data", "img/pdtelkom.png", []string{"5 GB", "10 GB"}},
	{"Paket Data IM3", "Paket Data", "img/pdim3.png", []string{"5 GB", "10 GB"}},
	{"Paket Data AXIS", "Paket Data", "img/pdaxis.png", []string{"5 GB", "10 GB"}},
	{"Paket Data XL", "Paket Data", "img/pdxl.png", []string{"5 GB", "10 GB"}},
	{"Paket Data By.U", "Paket Data", "img/pdbyu.png", []string{"5 GB", "10 GB"}},

	{"Suntik Instagram", "Suntik Sosmed", "img/ig.png", []string{"1000 Followers", "5000 Followers"}},
	{"Suntik Tiktok", "Suntik Sosmed", "img/tiktok.png", []string{"1000 Followers", "5000 Followers"}},
}

// seed mengisi katalog awal di dalam tx yang diberikan. Tiap produk langsung di-reconcile.
func seed(ctx context.Context, tx store.Tx) (int, error) {
	for _, sp := range seedCatalog {
		pid, err := tx.CreateProduct(ctx, domain.ProductFields{Name: sp.name, Category: sp.category, Image: sp.image})
		if err != nil {
			return 0, errors.Wrapf(err, "seed product %q", sp.name)
		}
		for _, title := range sp.variants {
			if _, err := tx.CreateVariant(ctx, pid, domain.VariantFields{Title: title, Price: seedPrice, Stock: seedStock}); err != nil {
				return 0, errors.Wrapf(err, "seed variant %q/%q", sp.name, title)
			}
		}
		if _, err := Reconcile(ctx, tx, pid); err != nil {
			return 0, err
		}
	}
	return len(seedCatalog), nil
}
