package cafe

// EstadoCompra is the lifecycle state of a purchase.
type EstadoCompra string

const (
	CompraBorrador   EstadoCompra = "BORRADOR"
	CompraConfirmada EstadoCompra = "CONFIRMADA"
	CompraAnulada    EstadoCompra = "ANULADA"
)

func (e EstadoCompra) Valid() bool {
	switch e {
	case CompraBorrador, CompraConfirmada, CompraAnulada:
		return true
	}
	return false
}

// EstadoVenta is the lifecycle state of a sale.
type EstadoVenta string

const (
	VentaPendiente EstadoVenta = "PENDIENTE"
	VentaPagada    EstadoVenta = "PAGADA"
	VentaAnulada   EstadoVenta = "ANULADA"
)

func (e EstadoVenta) Valid() bool {
	switch e {
	case VentaPendiente, VentaPagada, VentaAnulada:
		return true
	}
	return false
}
