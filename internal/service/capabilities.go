package service

// Capabilities is the fixed self-description returned by the
// get_agent_capabilities tool.
const Capabilities = `Olá! Eu sou a Marina, sua assistente de dados da Supply Marine. Minhas principais funções são:

* **Consultar Vendas:** Posso calcular totais (geral, anual, mensal) e resumos mensais, baseados na data de recebimento da PO, opcionalmente filtrados por regime Naval/Offshore. (Ex: ` + "`vendas totais`, `vendas naval 2023`, `vendas offshore maio 2024`, `vendas por mes`" + `).
* **Consultar Faturamento:** Calcular Faturamento Bruto e Líquido (geral, anual, mensal) e resumos mensais, baseados na data de faturamento e status específicos, opcionalmente filtrados por regime Naval/Offshore. (Ex: ` + "`faturamento bruto total`, `faturamento líquido offshore 2024`, `faturamento naval por mes`" + `).
* **Verificar BMs Pendentes:** Contar o total (geral, anual, mensal) e resumos mensais de BMs pendentes (liberação nula e relatório enviado), baseados na data de envio do relatório, opcionalmente filtrados por regime Naval/Offshore. (Ex: ` + "`BMs pendentes total`, `bms offshore 2024`, `bms naval por mes`" + `).
* **Verificar Relatórios Pendentes:** Contar o total (geral, anual, mensal) e resumos mensais de relatórios pendentes (envio nulo), baseados na data final do atendimento, opcionalmente filtrados por regime Naval/Offshore. (Ex: ` + "`relatórios pendentes`, `relatórios naval 2023`, `relatórios offshore por mes`" + `).
* **Gerar Relatório Gerencial:** Criar um resumo diário (YTD) com os principais indicadores e gráficos. (Use: 'relatório gerencial', 'relatório do dia').
* **Executar SQL:** Tentar responder perguntas mais complexas com consultas SQL SELECT diretas (se habilitado).
* **Buscar em Documentos:** Procurar informações contextuais em documentos da base de conhecimento (se habilitado).

Em que posso te ajudar com essas funções hoje?`
