package catalog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gestfood/digital-menu/pkg/enums"
	pkgerrors "github.com/gestfood/digital-menu/pkg/errors"
	"github.com/gestfood/digital-menu/pkg/logger"
	"github.com/gestfood/digital-menu/pkg/restclient"
	"github.com/shopspring/decimal"
)

func newTestCatalog(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := restclient.New(server.URL)
	if err != nil {
		t.Fatalf("rest client: %v", err)
	}
	svc, err := NewService(client, logger.Nop())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestResourcesUseCollectionPaths(t *testing.T) {
	var seen []string
	svc := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.Path)
		switch r.URL.Path {
		case "/desks":
			_, _ = io.WriteString(w, `[{"id":"d1","deskCode":"M01","seats":4}]`)
		case "/employees":
			_, _ = io.WriteString(w, `[{"id":"e1","name":"Ana","email":"ana@gf.com","cpf":"1","role":"GERENTE"}]`)
		case "/clients":
			_, _ = io.WriteString(w, `"c9"`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	desks, err := svc.Desks.List(context.Background())
	if err != nil {
		t.Fatalf("list desks: %v", err)
	}
	if len(desks) != 1 || desks[0].DeskCode != "M01" || desks[0].Seats != 4 {
		t.Fatalf("unexpected desks %+v", desks)
	}

	employees, err := svc.Employees.List(context.Background())
	if err != nil {
		t.Fatalf("list employees: %v", err)
	}
	if len(employees) != 1 || employees[0].Role != enums.EmployeeRoleManager {
		t.Fatalf("unexpected employees %+v", employees)
	}

	id, err := svc.Clients.Create(context.Background(), Client{Name: "Bia", CPF: "12345678909"})
	if err != nil || id != "c9" {
		t.Fatalf("unexpected create result %q %v", id, err)
	}

	want := []string{"GET /desks", "GET /employees", "POST /clients"}
	if strings.Join(seen, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected requests %v", seen)
	}
}

func TestProductCreateSendsMultipart(t *testing.T) {
	var product map[string]any
	var files []string
	svc := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/products" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		reader, err := r.MultipartReader()
		if err != nil {
			t.Fatalf("expected multipart body: %v", err)
		}
		for {
			part, err := reader.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Fatalf("next part: %v", err)
			}
			data, _ := io.ReadAll(part)
			switch part.FormName() {
			case "product":
				if part.FileName() != "product.json" || part.Header.Get("Content-Type") != "application/json" {
					t.Fatalf("unexpected product part headers %v", part.Header)
				}
				if err := json.Unmarshal(data, &product); err != nil {
					t.Fatalf("decode product part: %v", err)
				}
			case "files":
				files = append(files, part.FileName()+":"+string(data))
			}
		}
		_, _ = io.WriteString(w, `{"id":"p7"}`)
	})

	id, err := svc.Products.Create(context.Background(), ProductInput{
		Name:        "Pastel",
		Price:       decimal.RequireFromString("8.50"),
		Description: "Carne",
		ImagesNames: []string{"ignored.png"},
	}, []Image{
		{FileName: "a.png", ContentType: "image/png", Data: []byte("A")},
		{FileName: "b.png", ContentType: "image/png", Data: []byte("B")},
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	if id != "p7" {
		t.Fatalf("expected id p7, got %q", id)
	}
	if product["name"] != "Pastel" || product["price"] != 8.5 {
		t.Fatalf("unexpected product part %v", product)
	}
	if names, ok := product["imagesNames"].([]any); !ok || len(names) != 0 {
		t.Fatalf("create should send an empty imagesNames list, got %v", product["imagesNames"])
	}
	if strings.Join(files, ",") != "a.png:A,b.png:B" {
		t.Fatalf("unexpected files %v", files)
	}
}

func TestProductUpdateKeepsExistingImages(t *testing.T) {
	var product map[string]any
	svc := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/products/p7" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		file, _, err := r.FormFile("product")
		if err != nil {
			t.Fatalf("product part missing: %v", err)
		}
		defer file.Close()
		if err := json.NewDecoder(file).Decode(&product); err != nil {
			t.Fatalf("decode product: %v", err)
		}
	})

	id, err := svc.Products.Update(context.Background(), "p7", ProductInput{
		Name:        "Pastel",
		Price:       decimal.RequireFromString("9"),
		ImagesNames: []string{"old.png"},
	}, nil)
	if err != nil {
		t.Fatalf("update product: %v", err)
	}
	if id != "p7" {
		t.Fatalf("empty reply should echo the id, got %q", id)
	}
	names, ok := product["imagesNames"].([]any)
	if !ok || len(names) != 1 || names[0] != "old.png" {
		t.Fatalf("unexpected imagesNames %v", product["imagesNames"])
	}
}

func TestProductValidationFailsLocally(t *testing.T) {
	svc := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("no request expected, got %s %s", r.Method, r.URL.Path)
	})

	_, err := svc.Products.Create(context.Background(), ProductInput{Name: " "}, nil)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, err = svc.Products.Update(context.Background(), "", ProductInput{Name: "x"}, nil)
	if !pkgerrors.IsCode(err, pkgerrors.CodeInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	_, err = svc.Products.Create(context.Background(), ProductInput{Name: "x", Price: decimal.NewFromInt(-1)}, nil)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected negative price to be rejected, got %v", err)
	}
}

func TestFinders(t *testing.T) {
	clients := []Client{
		{ID: "c1", CPF: "123.456.789-09", Email: "Bia@Mail.com"},
		{ID: "c2", CPF: "98765432100", Email: "ze@mail.com"},
	}
	if got, ok := FindClientByCPF(clients, "12345678909"); !ok || got.ID != "c1" {
		t.Fatalf("expected digit-only cpf match, got %+v %v", got, ok)
	}
	if _, ok := FindClientByCPF(clients, "..."); ok {
		t.Fatalf("cpf without digits must not match")
	}
	if got, ok := FindClientByEmail(clients, "bia@mail.COM"); !ok || got.ID != "c1" {
		t.Fatalf("expected case-insensitive email match, got %+v %v", got, ok)
	}
	if DigitsOnly("(11) 9 8888-7777") != "11988887777" {
		t.Fatalf("unexpected digits %q", DigitsOnly("(11) 9 8888-7777"))
	}
	if _, ok := FindDesk([]Desk{{ID: "d1"}}, "d2"); ok {
		t.Fatalf("unexpected desk match")
	}
}
