package cafe

import (
	"context"
	"fmt"

	"cafeteria-service/internal/pool"
)

// schema creates the ten tables in foreign-key order. Statements are
// idempotent so AutoMigrate can run on every start.
var schema = []struct {
	table string
	ddl   string
}{
	{"rol", `
		CREATE TABLE IF NOT EXISTS rol(
			id_rol SERIAL PRIMARY KEY,
			nombre VARCHAR(50) NOT NULL UNIQUE
		)`},
	{"personal", `
		CREATE TABLE IF NOT EXISTS personal(
			id_personal SERIAL PRIMARY KEY,
			id_rol INT NOT NULL REFERENCES rol(id_rol),
			nombres VARCHAR(100) NOT NULL,
			primer_apellido VARCHAR(100) NOT NULL,
			segundo_apellido VARCHAR(100),
			telefono VARCHAR(20),
			fecha_nacimiento DATE,
			fecha_contratacion DATE,
			activo BOOLEAN DEFAULT TRUE
		)`},
	{"usuario", `
		CREATE TABLE IF NOT EXISTS usuario(
			id_usuario SERIAL PRIMARY KEY,
			id_personal INT NOT NULL UNIQUE REFERENCES personal(id_personal),
			username VARCHAR(50) NOT NULL UNIQUE,
			email VARCHAR(150) NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			activo BOOLEAN NOT NULL DEFAULT TRUE
		)`},
	{"proveedor", `
		CREATE TABLE IF NOT EXISTS proveedor(
			id_proveedor SERIAL PRIMARY KEY,
			nombre VARCHAR(150) NOT NULL,
			contacto VARCHAR(100),
			telefono VARCHAR(20),
			email VARCHAR(150),
			direccion TEXT,
			activo BOOLEAN DEFAULT TRUE
		)`},
	{"insumo", `
		CREATE TABLE IF NOT EXISTS insumo(
			id_insumo SERIAL PRIMARY KEY,
			nombre VARCHAR(100) NOT NULL,
			categoria VARCHAR(50),
			unidad_medida VARCHAR(20),
			stock_minimo NUMERIC(12,3) DEFAULT 0,
			activo BOOLEAN DEFAULT TRUE
		)`},
	{"producto", `
		CREATE TABLE IF NOT EXISTS producto(
			id_producto SERIAL PRIMARY KEY,
			nombre VARCHAR(100) NOT NULL,
			descripcion TEXT,
			unidad_medida VARCHAR(20),
			precio_venta NUMERIC(10,2) DEFAULT 0,
			activo BOOLEAN DEFAULT TRUE
		)`},
	{"producto_insumo", `
		CREATE TABLE IF NOT EXISTS producto_insumo(
			id_producto_insumo SERIAL PRIMARY KEY,
			id_producto INT NOT NULL REFERENCES producto(id_producto) ON DELETE CASCADE,
			id_insumo INT NOT NULL REFERENCES insumo(id_insumo),
			cantidad NUMERIC(12,3) NOT NULL,
			UNIQUE(id_producto, id_insumo)
		)`},
	{"compra", `
		CREATE TABLE IF NOT EXISTS compra(
			id_compra SERIAL PRIMARY KEY,
			id_proveedor INT REFERENCES proveedor(id_proveedor),
			id_usuario INT NOT NULL REFERENCES usuario(id_usuario),
			fecha TIMESTAMPTZ NOT NULL DEFAULT now(),
			total NUMERIC(12,2) DEFAULT 0,
			estado VARCHAR(20) NOT NULL DEFAULT 'BORRADOR'
				CHECK (estado IN ('BORRADOR', 'CONFIRMADA', 'ANULADA'))
		)`},
	{"detalle_compra", `
		CREATE TABLE IF NOT EXISTS detalle_compra(
			id_detalle_compra SERIAL PRIMARY KEY,
			id_compra INT NOT NULL REFERENCES compra(id_compra) ON DELETE CASCADE,
			id_insumo INT NOT NULL REFERENCES insumo(id_insumo),
			cantidad NUMERIC(12,3) NOT NULL,
			cantidad_disponible NUMERIC(12,3) NOT NULL,
			costo_unitario NUMERIC(12,4) NOT NULL,
			fecha_vencimiento DATE
		)`},
	{"venta", `
		CREATE TABLE IF NOT EXISTS venta(
			id_venta SERIAL PRIMARY KEY,
			id_usuario INT NOT NULL REFERENCES usuario(id_usuario),
			fecha TIMESTAMPTZ NOT NULL DEFAULT now(),
			estado VARCHAR(20) NOT NULL DEFAULT 'PENDIENTE'
				CHECK (estado IN ('PENDIENTE', 'PAGADA', 'ANULADA'))
		)`},
}

// AutoMigrate creates any missing table. It stops at the first failure.
func AutoMigrate(ctx context.Context, q pool.Querier) error {
	for _, s := range schema {
		if _, err := q.Exec(ctx, s.ddl); err != nil {
			return fmt.Errorf("migrate %s: %w", s.table, err)
		}
	}
	return nil
}
