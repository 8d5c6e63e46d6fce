// Package memory implementa los repositorios y la unidad de trabajo en memoria.
// Run serializa las transacciones con un mutex y trabaja sobre una copia del estado:
// si fn falla la copia se descarta (rollback), si no reemplaza al estado (commit).
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/jhoicas/ventas-cfdi/internal/domain/entity"
	"github.com/jhoicas/ventas-cfdi/internal/domain/repository"
)

type dataset struct {
	products       map[string]entity.Product
	customers      map[string]entity.Customer
	companies      map[string]entity.Company
	movements      []entity.Movement
	sales          map[string]entity.Sale
	saleItems      map[string][]entity.SaleItem
	quotations     map[string]entity.Quotation
	quotationItems map[string][]entity.QuotationItem
	invoices       map[string]entity.Invoice
	invoiceItems   map[string][]entity.InvoiceItem
}

func newDataset() *dataset {
	return &dataset{
		products:       map[string]entity.Product{},
		customers:      map[string]entity.Customer{},
		companies:      map[string]entity.Company{},
		sales:          map[string]entity.Sale{},
		saleItems:      map[string][]entity.SaleItem{},
		quotations:     map[string]entity.Quotation{},
		quotationItems: map[string][]entity.QuotationItem{},
		invoices:       map[string]entity.Invoice{},
		invoiceItems:   map[string][]entity.InvoiceItem{},
	}
}

// clone copia superficial de los mapas; los slices de líneas se copian al escribir.
func (d *dataset) clone() *dataset {
	return &dataset{
		products:       maps.Clone(d.products),
		customers:      maps.Clone(d.customers),
		companies:      maps.Clone(d.companies),
		movements:      slices.Clone(d.movements),
		sales:          maps.Clone(d.sales),
		saleItems:      maps.Clone(d.saleItems),
		quotations:     maps.Clone(d.quotations),
		quotationItems: maps.Clone(d.quotationItems),
		invoices:       maps.Clone(d.invoices),
		invoiceItems:   maps.Clone(d.invoiceItems),
	}
}

// Store estado compartido.
type Store struct {
	mu     sync.Mutex
	data   *dataset
	faults map[string]error
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{data: newDataset(), faults: map[string]error{}}
}

// Run ejecuta fn como una transacción serializable.
func (s *Store) Run(ctx context.Context, fn func(repos repository.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(view{s: s, d: work, tx: true}.repos()); err != nil {
		return err
	}
	s.data = work
	return nil
}

// Repos repositorios fuera de transacción; cada llamada toma el candado del store.
func (s *Store) Repos() repository.Repos {
	return view{s: s}.repos()
}

// Fail hace que la operación op ("movements.create", "invoices.save_stamp", ...) devuelva err.
// Con err nil se quita la falla.
func (s *Store) Fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.faults, op)
		return
	}
	s.faults[op] = err
}

// SeedCompany, SeedCustomer y SeedProduct cargan catálogos (administrados fuera de este core).
func (s *Store) SeedCompany(c entity.Company) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.companies[c.ID] = c
}

func (s *Store) SeedCustomer(c entity.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.customers[c.ID] = c
}

func (s *Store) SeedProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.products[p.ID] = p
}

// view acceso al estado: dentro de Run usa la copia de trabajo sin volver a tomar el candado.
type view struct {
	s  *Store
	d  *dataset
	tx bool
}

func (v view) open() (*dataset, func()) {
	if v.tx {
		return v.d, func() {}
	}
	v.s.mu.Lock()
	return v.s.data, v.s.mu.Unlock
}

// fault se llama con el candado tomado.
func (v view) fault(op string) error { return v.s.faults[op] }

func (v view) repos() repository.Repos {
	return repository.Repos{
		Products:   &ProductRepo{v},
		Customers:  &CustomerRepo{v},
		Companies:  &CompanyRepo{v},
		Movements:  &MovementRepo{v},
		Sales:      &SaleRepo{v},
		Quotations: &QuotationRepo{v},
		Invoices:   &InvoiceRepo{v},
	}
}
