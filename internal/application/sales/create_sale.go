package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/ventas-cfdi/internal/application/inventory"
	"github.com/jhoicas/ventas-cfdi/internal/domain"
	"github.com/jhoicas/ventas-cfdi/internal/domain/entity"
	"github.com/jhoicas/ventas-cfdi/internal/domain/repository"
)

// CreateSaleUseCase crea la venta, sus líneas y los movimientos de inventario en una sola transacción.
type CreateSaleUseCase struct {
	txRunner     TxRunner
	ledger       *inventory.Ledger
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
	saleRepo     repository.SaleRepository
	now          func() time.Time
}

// NewCreateSaleUseCase construye el caso de uso.
func NewCreateSaleUseCase(
	txRunner TxRunner,
	ledger *inventory.Ledger,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
) *CreateSaleUseCase {
	return &CreateSaleUseCase{
		txRunner:     txRunner,
		ledger:       ledger,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		saleRepo:     saleRepo,
		now:          time.Now,
	}
}

// SaleItemInput línea solicitada. UnitPrice viene del llamador (p. ej. de la cotización) y no se recalcula.
type SaleItemInput struct {
	ProductID     string
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	SatProductKey string
	SatUnitKey    string
	Description   string
}

// CreateSaleInput solicitud de venta.
type CreateSaleInput struct {
	CustomerID string
	Items      []SaleItemInput
	Notes      string
}

// prepared resultado de la validación previa a la transacción.
type prepared struct {
	customer *entity.Customer
	products map[string]*entity.Product
	total    decimal.Decimal
}

// Create valida todo antes de abrir la transacción (cliente, productos y stock) y luego,
// de forma atómica, crea la venta, las líneas y descuenta inventario por cada producto con stock.
func (uc *CreateSaleUseCase) Create(ctx context.Context, p entity.Principal, in CreateSaleInput) (*entity.Sale, error) {
	prep, err := uc.prepare(ctx, p, in)
	if err != nil {
		return nil, err
	}
	var sale *entity.Sale
	err = uc.txRunner.Run(ctx, func(repos repository.Repos) error {
		s, err := uc.persist(ctx, repos, p, in, prep)
		if err != nil {
			return err
		}
		sale = s
		return nil
	})
	if err != nil {
		return nil, classifyTxError("crear venta", err)
	}
	return sale, nil
}

// Get devuelve la venta con productos y cliente resueltos.
func (uc *CreateSaleUseCase) Get(ctx context.Context, p entity.Principal, id string) (*entity.Sale, error) {
	if !p.Valid() {
		return nil, domain.ErrUnauthorized
	}
	sale, err := uc.saleRepo.GetByID(ctx, p.CompanyID, id)
	if err != nil {
		return nil, fmt.Errorf("obtener venta: %w", err)
	}
	if sale == nil {
		return nil, &domain.NotFoundError{Entity: "venta", ID: id}
	}
	if err := ResolveSale(ctx, sale, uc.customerRepo, uc.productRepo); err != nil {
		return nil, err
	}
	return sale, nil
}

// ResolveSale adjunta cliente y productos a la venta para mostrarla o validarla.
func ResolveSale(ctx context.Context, sale *entity.Sale, customers repository.CustomerRepository, products repository.ProductRepository) error {
	cust, err := customers.GetByID(ctx, sale.CompanyID, sale.CustomerID)
	if err != nil {
		return fmt.Errorf("resolver cliente: %w", err)
	}
	sale.Customer = cust
	cache := make(map[string]*entity.Product, len(sale.Items))
	for i := range sale.Items {
		id := sale.Items[i].ProductID
		prod, ok := cache[id]
		if !ok {
			prod, err = products.GetByID(ctx, sale.CompanyID, id)
			if err != nil {
				return fmt.Errorf("resolver producto %s: %w", id, err)
			}
			cache[id] = prod
		}
		sale.Items[i].Product = prod
	}
	return nil
}

func (uc *CreateSaleUseCase) prepare(ctx context.Context, p entity.Principal, in CreateSaleInput) (*prepared, error) {
	if !p.Valid() {
		return nil, domain.ErrUnauthorized
	}
	if len(in.Items) == 0 {
		return nil, domain.InvalidInputf("la venta debe tener al menos una línea")
	}
	for i, it := range in.Items {
		if it.ProductID == "" {
			return nil, domain.InvalidInputf("línea %d: producto requerido", i)
		}
		if !it.Quantity.IsPositive() {
			return nil, domain.InvalidInputf("línea %d: la cantidad debe ser mayor a cero", i)
		}
		if it.UnitPrice.IsNegative() {
			return nil, domain.InvalidInputf("línea %d: el precio unitario no puede ser negativo", i)
		}
	}

	customer, err := uc.customerRepo.GetByID(ctx, p.CompanyID, in.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("obtener cliente: %w", err)
	}
	if customer == nil {
		return nil, &domain.NotFoundError{Entity: "cliente", ID: in.CustomerID}
	}

	prep := &prepared{customer: customer, products: make(map[string]*entity.Product), total: decimal.Zero}
	requested := make(map[string]decimal.Decimal)
	var order []string
	for _, it := range in.Items {
		if _, ok := prep.products[it.ProductID]; !ok {
			prod, err := uc.productRepo.GetByID(ctx, p.CompanyID, it.ProductID)
			if err != nil {
				return nil, fmt.Errorf("obtener producto %s: %w", it.ProductID, err)
			}
			if prod == nil {
				return nil, &domain.NotFoundError{Entity: "producto", ID: it.ProductID}
			}
			prep.products[it.ProductID] = prod
			order = append(order, it.ProductID)
		}
		requested[it.ProductID] = requested[it.ProductID].Add(it.Quantity)
		prep.total = prep.total.Add(entity.LineTotal(it.Quantity, it.UnitPrice))
	}

	// Pre-chequeo de stock; el ledger vuelve a validar con la fila bloqueada.
	for _, id := range order {
		prod := prep.products[id]
		if prod.UseStock && prod.Stock.LessThan(requested[id]) {
			return nil, &domain.InsufficientStockError{
				ProductID:   prod.ID,
				ProductName: prod.Name,
				Available:   prod.Stock,
				Requested:   requested[id],
			}
		}
	}
	return prep, nil
}

// persist corre dentro de la transacción del caller.
func (uc *CreateSaleUseCase) persist(
	ctx context.Context,
	repos repository.Repos,
	p entity.Principal,
	in CreateSaleInput,
	prep *prepared,
) (*entity.Sale, error) {
	now := uc.now()
	sale := &entity.Sale{
		ID:          uuid.New().String(),
		CompanyID:   p.CompanyID,
		CustomerID:  in.CustomerID,
		UserID:      p.UserID,
		Status:      entity.SaleStatusCompleted,
		TotalAmount: prep.total,
		Notes:       in.Notes,
		CreatedAt:   now,
		Customer:    prep.customer,
	}
	if err := repos.Sales.Create(ctx, sale); err != nil {
		return nil, fmt.Errorf("insertar venta: %w", err)
	}

	note := fmt.Sprintf("Venta #%s", shortID(sale.ID))
	for _, it := range in.Items {
		prod := prep.products[it.ProductID]
		item := entity.SaleItem{
			ID:            uuid.New().String(),
			SaleID:        sale.ID,
			ProductID:     it.ProductID,
			Quantity:      it.Quantity,
			UnitPrice:     it.UnitPrice,
			Total:         entity.LineTotal(it.Quantity, it.UnitPrice),
			SatProductKey: it.SatProductKey,
			SatUnitKey:    it.SatUnitKey,
			Description:   it.Description,
		}
		if err := repos.Sales.CreateItem(ctx, &item); err != nil {
			return nil, fmt.Errorf("insertar línea de venta: %w", err)
		}
		if prod.UseStock {
			mov, err := uc.ledger.Apply(ctx, repos, inventory.ApplyInput{
				CompanyID: p.CompanyID,
				ProductID: it.ProductID,
				ActorID:   p.UserID,
				Delta:     it.Quantity.Neg(),
				Note:      note,
			})
			if err != nil {
				return nil, err
			}
			snapshot := *prod
			snapshot.Stock = mov.NewStock
			prod = &snapshot
			prep.products[it.ProductID] = prod
		}
		item.Product = prod
		sale.Items = append(sale.Items, item)
	}
	return sale, nil
}

func classifyTxError(op string, err error) error {
	if domain.IsClassified(err) {
		return err
	}
	return &domain.TransactionError{Op: op, Err: err}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
