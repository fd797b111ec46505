package cafe

import (
	"encoding/json"

	"github.com/jackc/pgx/v5/pgtype"
)

// Request bodies for create and update. Each Values method returns the
// column values in the order of the matching resource's Columns, with
// defaults applied to omitted optional fields.
//
// Decimals are json.Number so both 12.5 and "12.50" are accepted; the text
// is handed to PostgreSQL unchanged.

type RolInput struct {
	Nombre string `json:"nombre" validate:"required"`
}

func (in RolInput) Values() []any {
	return []any{in.Nombre}
}

type PersonalInput struct {
	IDRol             int64       `json:"id_rol" validate:"required"`
	Nombres           string      `json:"nombres" validate:"required"`
	PrimerApellido    string      `json:"primer_apellido" validate:"required"`
	SegundoApellido   *string     `json:"segundo_apellido"`
	Telefono          *string     `json:"telefono"`
	FechaNacimiento   pgtype.Date `json:"fecha_nacimiento"`
	FechaContratacion pgtype.Date `json:"fecha_contratacion"`
	Activo            *bool       `json:"activo"`
}

func (in PersonalInput) Values() []any {
	return []any{
		in.IDRol, in.Nombres, in.PrimerApellido, in.SegundoApellido, in.Telefono,
		in.FechaNacimiento, in.FechaContratacion, boolOr(in.Activo, true),
	}
}

// UsuarioInput has no activo field; the column is managed by the server.
type UsuarioInput struct {
	IDPersonal   int64  `json:"id_personal" validate:"required"`
	Username     string `json:"username" validate:"required"`
	Email        string `json:"email" validate:"required"`
	PasswordHash string `json:"password_hash" validate:"required"`
}

func (in UsuarioInput) Values() []any {
	return []any{in.IDPersonal, in.Username, in.Email, in.PasswordHash}
}

type InsumoInput struct {
	Nombre       string       `json:"nombre" validate:"required"`
	Categoria    *string      `json:"categoria"`
	UnidadMedida *string      `json:"unidad_medida"`
	StockMinimo  *json.Number `json:"stock_minimo" validate:"omitempty,decimal"`
	Activo       *bool        `json:"activo"`
}

func (in InsumoInput) Values() []any {
	return []any{in.Nombre, in.Categoria, in.UnidadMedida, decimalOr(in.StockMinimo, "0"), boolOr(in.Activo, true)}
}

type ProductoInput struct {
	Nombre       string       `json:"nombre" validate:"required"`
	Descripcion  *string      `json:"descripcion"`
	UnidadMedida *string      `json:"unidad_medida"`
	PrecioVenta  *json.Number `json:"precio_venta" validate:"omitempty,decimal"`
	Activo       *bool        `json:"activo"`
}

func (in ProductoInput) Values() []any {
	return []any{in.Nombre, in.Descripcion, in.UnidadMedida, decimalOr(in.PrecioVenta, "0"), boolOr(in.Activo, true)}
}

type ProductoInsumoInput struct {
	IDProducto int64       `json:"id_producto" validate:"required"`
	IDInsumo   int64       `json:"id_insumo" validate:"required"`
	Cantidad   json.Number `json:"cantidad" validate:"required,decimal"`
}

func (in ProductoInsumoInput) Values() []any {
	return []any{in.IDProducto, in.IDInsumo, in.Cantidad.String()}
}

type ProveedorInput struct {
	Nombre    string  `json:"nombre" validate:"required"`
	Contacto  *string `json:"contacto"`
	Telefono  *string `json:"telefono"`
	Email     *string `json:"email"`
	Direccion *string `json:"direccion"`
	Activo    *bool   `json:"activo"`
}

func (in ProveedorInput) Values() []any {
	return []any{in.Nombre, in.Contacto, in.Telefono, in.Email, in.Direccion, boolOr(in.Activo, true)}
}

type CompraInput struct {
	IDProveedor *int64        `json:"id_proveedor"`
	IDUsuario   int64         `json:"id_usuario" validate:"required"`
	Total       *json.Number  `json:"total" validate:"omitempty,decimal"`
	Estado      *EstadoCompra `json:"estado" validate:"omitempty,estado_compra"`
}

func (in CompraInput) Values() []any {
	estado := CompraBorrador
	if in.Estado != nil {
		estado = *in.Estado
	}
	return []any{in.IDProveedor, in.IDUsuario, decimalOr(in.Total, "0"), string(estado)}
}

type DetalleCompraInput struct {
	IDCompra           int64       `json:"id_compra" validate:"required"`
	IDInsumo           int64       `json:"id_insumo" validate:"required"`
	Cantidad           json.Number `json:"cantidad" validate:"required,decimal"`
	CantidadDisponible json.Number `json:"cantidad_disponible" validate:"required,decimal"`
	CostoUnitario      json.Number `json:"costo_unitario" validate:"required,decimal"`
	FechaVencimiento   pgtype.Date `json:"fecha_vencimiento"`
}

func (in DetalleCompraInput) Values() []any {
	return []any{
		in.IDCompra, in.IDInsumo, in.Cantidad.String(), in.CantidadDisponible.String(),
		in.CostoUnitario.String(), in.FechaVencimiento,
	}
}

type VentaInput struct {
	IDUsuario int64        `json:"id_usuario" validate:"required"`
	Estado    *EstadoVenta `json:"estado" validate:"omitempty,estado_venta"`
}

func (in VentaInput) Values() []any {
	estado := VentaPendiente
	if in.Estado != nil {
		estado = *in.Estado
	}
	return []any{in.IDUsuario, string(estado)}
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func decimalOr(v *json.Number, def string) string {
	if v == nil {
		return def
	}
	return v.String()
}
