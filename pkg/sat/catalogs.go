// Package sat contiene catálogos y validaciones alineados al Anexo 20
// (CFDI 4.0) del SAT (México).
package sat

// =============================================================================
// c_RegimenFiscal
// =============================================================================

const (
	RegimeGeneralPM         = "601" // General de Ley Personas Morales
	RegimeNonProfit         = "603" // Personas Morales con Fines no Lucrativos
	RegimeSalaried          = "605" // Sueldos y Salarios
	RegimeLeasing           = "606" // Arrendamiento
	RegimeForeignResident   = "610" // Residentes en el Extranjero
	RegimeNoFiscalDuties    = "616" // Sin obligaciones fiscales
	RegimeBusinessActivity  = "612" // Personas Físicas con Actividades Empresariales y Profesionales
	RegimeFiscalIncorporate = "621" // Incorporación Fiscal
	RegimeDigitalPlatforms  = "625" // Actividades Empresariales con ingresos a través de Plataformas Tecnológicas
	RegimeResico            = "626" // Régimen Simplificado de Confianza
)

// TaxRegimes catálogo c_RegimenFiscal vigente.
var TaxRegimes = map[string]string{
	"601": "General de Ley Personas Morales",
	"603": "Personas Morales con Fines no Lucrativos",
	"605": "Sueldos y Salarios e Ingresos Asimilados a Salarios",
	"606": "Arrendamiento",
	"607": "Régimen de Enajenación o Adquisición de Bienes",
	"608": "Demás ingresos",
	"610": "Residentes en el Extranjero sin Establecimiento Permanente en México",
	"611": "Ingresos por Dividendos (socios y accionistas)",
	"612": "Personas Físicas con Actividades Empresariales y Profesionales",
	"614": "Ingresos por intereses",
	"615": "Régimen de los ingresos por obtención de premios",
	"616": "Sin obligaciones fiscales",
	"620": "Sociedades Cooperativas de Producción que optan por diferir sus ingresos",
	"621": "Incorporación Fiscal",
	"622": "Actividades Agrícolas, Ganaderas, Silvícolas y Pesqueras",
	"623": "Opcional para Grupos de Sociedades",
	"624": "Coordinados",
	"625": "Régimen de las Actividades Empresariales con ingresos a través de Plataformas Tecnológicas",
	"626": "Régimen Simplificado de Confianza",
}

// =============================================================================
// c_UsoCFDI
// =============================================================================

const (
	UseAcquisitionOfGoods = "G01" // Adquisición de mercancías
	UseGeneralExpenses    = "G03" // Gastos en general
	UseNoFiscalEffects    = "S01" // Sin efectos fiscales
)

// CfdiUses catálogo c_UsoCFDI.
var CfdiUses = map[string]string{
	"G01":  "Adquisición de mercancías",
	"G02":  "Devoluciones, descuentos o bonificaciones",
	"G03":  "Gastos en general",
	"I01":  "Construcciones",
	"I02":  "Mobiliario y equipo de oficina por inversiones",
	"I03":  "Equipo de transporte",
	"I04":  "Equipo de computo y accesorios",
	"I05":  "Dados, troqueles, moldes, matrices y herramental",
	"I06":  "Comunicaciones telefónicas",
	"I07":  "Comunicaciones satelitales",
	"I08":  "Otra maquinaria y equipo",
	"D01":  "Honorarios médicos, dentales y gastos hospitalarios",
	"D02":  "Gastos médicos por incapacidad o discapacidad",
	"D03":  "Gastos funerales",
	"D04":  "Donativos",
	"D05":  "Intereses reales efectivamente pagados por créditos hipotecarios",
	"D06":  "Aportaciones voluntarias al SAR",
	"D07":  "Primas por seguros de gastos médicos",
	"D08":  "Gastos de transportación escolar obligatoria",
	"D09":  "Depósitos en cuentas para el ahorro, primas de pensiones",
	"D10":  "Pagos por servicios educativos (colegiaturas)",
	"S01":  "Sin efectos fiscales",
	"CP01": "Pagos",
	"CN01": "Nómina",
}

// =============================================================================
// Motivos de cancelación (Anexo 20, cancelación 2022)
// =============================================================================

const (
	CancelWithRelation    = "01" // Comprobante emitido con errores con relación
	CancelWithoutRelation = "02" // Comprobante emitido con errores sin relación
	CancelNotCarriedOut   = "03" // No se llevó a cabo la operación
	CancelGlobalInvoice   = "04" // Operación nominativa relacionada en una factura global
)

// CancelMotives motivos de cancelación aceptados por el SAT.
var CancelMotives = map[string]string{
	CancelWithRelation:    "Comprobante emitido con errores con relación",
	CancelWithoutRelation: "Comprobante emitido con errores sin relación",
	CancelNotCarriedOut:   "No se llevó a cabo la operación",
	CancelGlobalInvoice:   "Operación nominativa relacionada en una factura global",
}

// Impuestos (c_Impuesto) y factores (c_TipoFactor).
const (
	TaxIVA  = "002"
	TaxIEPS = "003"

	FactorRate   = "Tasa"
	FactorExempt = "Exento"
)

// Claves fijas del comprobante de ingreso.
const (
	CFDIVersion       = "4.0"
	VoucherIncome     = "I"
	CurrencyMXN       = "MXN"
	PaymentSingle     = "PUE"
	PaymentCash       = "01"
	ExportNotApply    = "01"
	TaxObjectYes      = "02"
	TaxObjectNo       = "01"
	GenericPublicName = "PUBLICO EN GENERAL"
)
