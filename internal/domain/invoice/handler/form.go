package handler

const uploadForm = `<!DOCTYPE html>
<html lang="es">
  <head>
    <meta charset="utf-8">
    <title>Convertir factura PDF a Excel</title>
  </head>
  <body>
    <h2>Convertir factura PDF a Excel</h2>
    <form action="/convert" method="post" enctype="multipart/form-data">
      <input type="file" name="file" accept="application/pdf" required />
      <button type="submit">Convertir</button>
    </form>
  </body>
</html>
`
