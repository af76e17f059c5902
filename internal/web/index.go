package web

// indexHTML 为静态表单页面，各表单直接提交到对应的下单接口。
const indexHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>PrimeTrade</title>
  <style>
    body { font-family: system-ui, -apple-system, Arial; margin: 24px; }
    .grid { display: grid; grid-template-columns: repeat(3, 1fr); gap: 16px; }
    form { border: 1px solid #ddd; border-radius: 8px; padding: 12px; }
    label { display: block; margin: 6px 0 2px; font-size: 13px; }
    input, select { width: 100%; padding: 6px; font-size: 14px; }
    button { margin-top: 8px; padding: 8px 10px; font-size: 14px; }
  </style>
</head>
<body>
  <h1>PrimeTrade</h1>
  <p>Submit orders below. Submissions are journaled; see <a href="/events">/events</a>.</p>

  <div class="grid">
    <form method="post" action="/orders/market">
      <h3>Market</h3>
      <label>Symbol</label><input name="symbol" value="BTCUSDT" />
      <label>Side</label><select name="side"><option>BUY</option><option>SELL</option></select>
      <label>Quantity</label><input name="quantity" value="0.001" />
      <button type="submit">Place</button>
    </form>

    <form method="post" action="/orders/limit">
      <h3>Limit</h3>
      <label>Symbol</label><input name="symbol" value="BTCUSDT" />
      <label>Side</label><select name="side"><option>BUY</option><option>SELL</option></select>
      <label>Quantity</label><input name="quantity" value="0.001" />
      <label>Price</label><input name="price" />
      <label>TIF</label><select name="tif"><option>GTC</option><option>IOC</option><option>FOK</option></select>
      <button type="submit">Place</button>
    </form>

    <form method="post" action="/orders/stop-limit">
      <h3>Stop-Limit</h3>
      <label>Symbol</label><input name="symbol" value="BTCUSDT" />
      <label>Side</label><select name="side"><option>BUY</option><option>SELL</option></select>
      <label>Quantity</label><input name="quantity" value="0.001" />
      <label>Price</label><input name="price" />
      <label>Stop price</label><input name="stop_price" />
      <label>TIF</label><select name="tif"><option>GTC</option><option>IOC</option><option>FOK</option></select>
      <button type="submit">Place</button>
    </form>

    <form method="post" action="/orders/twap">
      <h3>TWAP</h3>
      <label>Symbol</label><input name="symbol" value="BTCUSDT" />
      <label>Side</label><select name="side"><option>BUY</option><option>SELL</option></select>
      <label>Total quantity</label><input name="total_quantity" value="0.01" />
      <label>Slices</label><input name="slices" value="4" />
      <label>Interval (s)</label><input name="interval" value="5" />
      <label>Type</label><select name="type"><option>MARKET</option><option>LIMIT</option></select>
      <label>Limit price</label><input name="limit_price" />
      <button type="submit">Run</button>
    </form>

    <form method="post" action="/orders/oco">
      <h3>OCO</h3>
      <label>Symbol</label><input name="symbol" value="BTCUSDT" />
      <label>Side</label><select name="side"><option>BUY</option><option>SELL</option></select>
      <label>Quantity</label><input name="quantity" value="0.001" />
      <label>Limit price</label><input name="price" />
      <label>Stop price</label><input name="stop_price" />
      <label>Stop-limit price</label><input name="stop_limit_price" />
      <label>TIF</label><select name="tif"><option>GTC</option><option>IOC</option><option>FOK</option></select>
      <button type="submit">Place</button>
    </form>
  </div>
</body>
</html>
`
