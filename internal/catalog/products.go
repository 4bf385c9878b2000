package catalog

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strings"

	pkgerrors "github.com/gestfood/digital-menu/pkg/errors"
	"github.com/gestfood/digital-menu/pkg/logger"
	"github.com/gestfood/digital-menu/pkg/restclient"
	"github.com/gestfood/digital-menu/pkg/types"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

const (
	productPartField    = "product"
	productPartFileName = "product.json"
	filesPartField      = "files"
)

// ProductInput is the editable part of a product. ImagesNames lists images
// already stored by the backend that should be kept.
type ProductInput struct {
	Name        string          `json:"name" validate:"required"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	ImagesNames []string        `json:"imagesNames"`
}

type productPayload struct {
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Description string   `json:"description"`
	ImagesNames []string `json:"imagesNames"`
}

// Image is an uploaded picture sent as a files part.
type Image struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Products reads menu items as JSON and writes them as multipart forms.
type Products struct {
	client *restclient.Client
	items  *restclient.Resource[types.Product]
	logg   *logger.Logger
	loads  singleflight.Group
}

func newProducts(client *restclient.Client, logg *logger.Logger) *Products {
	return &Products{
		client: client,
		items:  restclient.NewResource[types.Product](client, productsPath),
		logg:   logg,
	}
}

// List returns the menu; a 404 yields an empty menu. Concurrent callers share
// one in-flight request.
func (p *Products) List(ctx context.Context) ([]types.Product, error) {
	v, err, _ := p.loads.Do(productsPath, func() (any, error) {
		return p.items.List(ctx)
	})
	if err != nil {
		return nil, err
	}
	shared := v.([]types.Product)
	out := make([]types.Product, len(shared))
	for i, product := range shared {
		out[i] = product.Clone()
	}
	return out, nil
}

func (p *Products) Get(ctx context.Context, id string) (*types.Product, error) {
	return p.items.Get(ctx, id)
}

func (p *Products) Delete(ctx context.Context, id string) error {
	return p.items.Delete(ctx, id)
}

// Create uploads a new product. The backend fills imagesNames from the files.
func (p *Products) Create(ctx context.Context, input ProductInput, images []Image) (string, error) {
	input.ImagesNames = []string{}
	raw, err := p.send(ctx, http.MethodPost, productsPath, input, images)
	if err != nil {
		return "", err
	}
	return restclient.DecodeID(raw)
}

// Update replaces a product, keeping the listed existing images and appending
// the uploaded ones.
func (p *Products) Update(ctx context.Context, id string, input ProductInput, images []Image) (string, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return "", pkgerrors.New(pkgerrors.CodeInvalidArgument, "id is required")
	}
	if input.ImagesNames == nil {
		input.ImagesNames = []string{}
	}
	raw, err := p.send(ctx, http.MethodPut, productsPath+"/"+url.PathEscape(trimmed), input, images)
	if err != nil {
		return "", err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return trimmed, nil
	}
	return restclient.DecodeID(raw)
}

func (p *Products) send(ctx context.Context, method, path string, input ProductInput, images []Image) ([]byte, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product price must not be negative")
	}

	price, _ := input.Price.Float64()
	product, err := restclient.JSONPart(productPartField, productPartFileName, productPayload{
		Name:        strings.TrimSpace(input.Name),
		Price:       price,
		Description: input.Description,
		ImagesNames: input.ImagesNames,
	})
	if err != nil {
		return nil, err
	}
	parts := make([]restclient.Part, 0, len(images)+1)
	parts = append(parts, product)
	for _, image := range images {
		parts = append(parts, restclient.Part{
			Field:       filesPartField,
			FileName:    image.FileName,
			ContentType: image.ContentType,
			Data:        image.Data,
		})
	}

	raw, err := p.client.Multipart(ctx, method, path, parts)
	if err != nil {
		p.logg.Warn(p.logg.WithFields(ctx, map[string]any{"path": path, "images": len(images), "error": err.Error()}), "catalog.product_upload_failed")
		return nil, err
	}
	return raw, nil
}
